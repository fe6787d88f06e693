// Package allocation places contamination sensors on a water network graph.
//
// The placement heuristic works from each junction's nearest neighbor:
// junctions chosen as nearest by more than one neighbor become initial
// sensors, junctions whose nearest neighbor is not a sensor are added so no
// junction goes uncovered, and sensors whose entire neighborhood is itself
// instrumented are removed as redundant. The result is a sensor set plus a
// coverage map from each uninstrumented junction to the sensor observing it.
package allocation

import (
	"sort"

	"github.com/hydrowatch/watermap/internal/inp"
)

// Result is one allocation outcome.
type Result struct {
	Sensors  []string          `json:"sensor_nodes"`
	Coverage map[string]string `json:"mapping"`
}

// Allocate runs the placement heuristic over the pipe graph.
func Allocate(graph inp.Graph) Result {
	nearest := nearestNeighbors(graph)

	sensors := initialSensors(nearest)
	for node := range leftOutNodes(nearest, sensors) {
		sensors[node] = true
	}
	removeRedundant(graph, sensors)

	return Result{
		Sensors:  sortedKeys(sensors),
		Coverage: coverageMap(nearest, sensors),
	}
}

// nearestNeighbors picks each junction's minimum-weight neighbor.
func nearestNeighbors(graph inp.Graph) map[string]string {
	nearest := make(map[string]string, len(graph))
	for node, edges := range graph {
		if len(edges) == 0 {
			continue
		}
		closest := edges[0]
		for _, e := range edges[1:] {
			if e.Weight < closest.Weight {
				closest = e
			}
		}
		nearest[node] = closest.ID
	}
	return nearest
}

// initialSensors selects junctions chosen as nearest neighbor by more than
// one other junction.
func initialSensors(nearest map[string]string) map[string]bool {
	counts := make(map[string]int)
	for _, n := range nearest {
		counts[n]++
	}
	sensors := make(map[string]bool)
	for node, count := range counts {
		if count > 1 {
			sensors[node] = true
		}
	}
	return sensors
}

// leftOutNodes finds junctions whose nearest neighbor is not a sensor; they
// would otherwise be unobserved.
func leftOutNodes(nearest map[string]string, sensors map[string]bool) map[string]bool {
	leftOut := make(map[string]bool)
	for node, neighbor := range nearest {
		if !sensors[neighbor] {
			leftOut[node] = true
		}
	}
	return leftOut
}

// removeRedundant drops sensors whose every neighbor is also a sensor.
// Redundancy is evaluated against a snapshot of the set, then removed in one
// step, so the pass is idempotent.
func removeRedundant(graph inp.Graph, sensors map[string]bool) {
	var redundant []string
	for s := range sensors {
		isRedundant := true
		for _, neighbor := range graph[s] {
			if !sensors[neighbor.ID] {
				isRedundant = false
				break
			}
		}
		if isRedundant {
			redundant = append(redundant, s)
		}
	}
	for _, s := range redundant {
		delete(sensors, s)
	}
}

// coverageMap assigns every uninstrumented junction to its nearest neighbor.
func coverageMap(nearest map[string]string, sensors map[string]bool) map[string]string {
	coverage := make(map[string]string)
	for node, neighbor := range nearest {
		if !sensors[node] {
			coverage[node] = neighbor
		}
	}
	return coverage
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
