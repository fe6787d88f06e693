// Package inp reads EPANET .inp network files: the section format, junction
// elevations, and the pipe connectivity used by sensor allocation.
package inp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sections used by this service. EPANET files carry many more; everything
// else is read and ignored.
const (
	SectionJunctions = "JUNCTIONS"
	SectionPipes     = "PIPES"
)

// Neighbor is one adjacent junction with its edge weight. Pipe lengths are
// not used for allocation; every pipe carries unit weight.
type Neighbor struct {
	ID     string
	Weight float64
}

// Graph is an undirected adjacency map over junction IDs.
type Graph map[string][]Neighbor

// ReadSections splits an .inp stream into its [SECTION] blocks. Blank lines
// and ";" comment lines are dropped; section names are upper-cased. Lines
// before the first section header are ignored.
func ReadSections(r io.Reader) (map[string][]string, error) {
	sections := make(map[string][]string)
	current := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.ToUpper(strings.Trim(line, "[]"))
			if _, ok := sections[current]; !ok {
				sections[current] = []string{}
			}
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read inp sections: %w", err)
	}
	return sections, nil
}

// SkipNodes returns the junctions whose elevation exceeds the threshold.
// Lines with an unparseable elevation are skipped, not rejected.
func SkipNodes(sections map[string][]string, elevationThreshold float64) map[string]bool {
	skip := make(map[string]bool)
	for _, line := range sections[SectionJunctions] {
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		elevation, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}
		if elevation > elevationThreshold {
			skip[parts[0]] = true
		}
	}
	return skip
}

// BuildGraph builds the undirected adjacency map from the [PIPES] section,
// excluding any pipe touching a skipped junction. Pipe lines are
// "<id> <node1> <node2> ..."; shorter lines are ignored.
func BuildGraph(sections map[string][]string, skip map[string]bool) Graph {
	graph := make(Graph)
	for _, line := range sections[SectionPipes] {
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		n1, n2 := parts[1], parts[2]
		if skip[n1] || skip[n2] {
			continue
		}
		graph[n1] = append(graph[n1], Neighbor{ID: n2, Weight: 1.0})
		graph[n2] = append(graph[n2], Neighbor{ID: n1, Weight: 1.0})
	}
	return graph
}

// ParseNetwork reads an .inp stream and returns the filtered pipe graph:
// junctions above the elevation threshold are excluded along with every pipe
// touching them.
func ParseNetwork(r io.Reader, elevationThreshold float64) (Graph, error) {
	sections, err := ReadSections(r)
	if err != nil {
		return nil, err
	}
	skip := SkipNodes(sections, elevationThreshold)
	return BuildGraph(sections, skip), nil
}
