// Command allocate runs the sensor placement heuristic over a local EPANET
// .inp file and prints the chosen sensor junctions plus the coverage mapping
// of every uninstrumented junction.
//
// Usage:
//
//	go run ./cmd/allocate -inp network.inp [-elevation-threshold 100]
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/hydrowatch/watermap/internal/allocation"
	"github.com/hydrowatch/watermap/internal/inp"
)

func main() {
	inpPath := flag.String("inp", "", "path to the EPANET .inp network file")
	elevationThreshold := flag.Float64("elevation-threshold", 100.0, "exclude junctions above this elevation")
	flag.Parse()

	if *inpPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*inpPath, *elevationThreshold); code != 0 {
		os.Exit(code)
	}
}

func run(inpPath string, elevationThreshold float64) int {
	f, err := os.Open(inpPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", inpPath, err)
		return 1
	}
	defer f.Close()

	network, err := inp.ParseNetwork(f, elevationThreshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", inpPath, err)
		return 1
	}

	result := allocation.Allocate(network)

	fmt.Println("Sensor Nodes:")
	for _, s := range result.Sensors {
		fmt.Printf("  %s\n", s)
	}

	fmt.Println("Coverage of Non-Sensor Nodes:")
	covered := make([]string, 0, len(result.Coverage))
	for node := range result.Coverage {
		covered = append(covered, node)
	}
	sort.Strings(covered)
	for _, node := range covered {
		fmt.Printf("  %s is covered by %s\n", node, result.Coverage[node])
	}

	return 0
}
