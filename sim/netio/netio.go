// Package netio parses the two on-disk formats the scheduling core
// consumes (§6): the plain-text network edge list and the JSON scenario
// file. Both are deliberately out-of-scope collaborators per spec §1 —
// this package exists only so the CLI has something to call.
package netio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	sim "github.com/tsn-sched/tsn-sched/sim"
)

var digitsRe = regexp.MustCompile(`\d+`)

// ParseNetworkFile reads a text edge list (one undirected edge per line,
// `#`/`%` comments, node numbering dense from 0, duplicate edges and
// self-loops tolerated) and builds the corresponding Graph.
func ParseNetworkFile(path string) (*sim.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("netio: open network file: %w", err)
	}
	defer f.Close()
	return ParseNetwork(f)
}

// ParseNetwork is ParseNetworkFile's testable core, reading from r.
func ParseNetwork(r io.Reader) (*sim.Graph, error) {
	adjacency := make(map[int]map[int]bool)
	maxNode := -1

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' || line[0] == '%' {
			continue
		}
		nums := digitsRe.FindAllString(line, -1)
		if len(nums) < 2 {
			continue
		}
		a, err1 := strconv.Atoi(nums[0])
		b, err2 := strconv.Atoi(nums[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("netio: malformed edge line %q", line)
		}
		if a > maxNode {
			maxNode = a
		}
		if b > maxNode {
			maxNode = b
		}
		if adjacency[a] == nil {
			adjacency[a] = make(map[int]bool)
		}
		if adjacency[b] == nil {
			adjacency[b] = make(map[int]bool)
		}
		if a != b {
			adjacency[a][b] = true
			adjacency[b][a] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netio: reading network file: %w", err)
	}

	g := sim.NewGraph()
	for n := 0; n <= maxNode; n++ {
		var neighbors []sim.NetworkNodeId
		for m := 0; m <= maxNode; m++ {
			if adjacency[n][m] {
				neighbors = append(neighbors, sim.NetworkNodeId(m))
			}
		}
		g.InsertNetworkDevice(neighbors)
	}
	return g, nil
}

// scenarioDoc mirrors the JSON scenario document's shape (§6).
type scenarioDoc struct {
	TimeSteps []struct {
		Time        int64       `json:"time"`
		RemoveFlows []int       `json:"removeFlows"`
		AddFlows    []flowField `json:"addFlows"`
	} `json:"time_steps"`
}

type flowField struct {
	FlowID      int   `json:"flowID"`
	PackageSize int   `json:"package size"`
	Period      int64 `json:"period"`
	Source      int   `json:"source"`
	Destination int   `json:"destination"`
}

// TimeStep is one parsed scenario time step, ready for the scenario
// driver to apply.
type TimeStep struct {
	Time        int64
	RemoveFlows []sim.FlowId
	AddFlows    []sim.Flow
}

// ParseScenarioFile reads the JSON scenario document at path.
func ParseScenarioFile(path string) ([]TimeStep, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("netio: open scenario file: %w", err)
	}
	defer f.Close()
	return ParseScenario(f)
}

// ParseScenario is ParseScenarioFile's testable core, reading from r.
func ParseScenario(r io.Reader) ([]TimeStep, error) {
	var doc scenarioDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("netio: decode scenario: %w", err)
	}

	steps := make([]TimeStep, 0, len(doc.TimeSteps))
	for _, ts := range doc.TimeSteps {
		step := TimeStep{Time: ts.Time}
		for _, id := range ts.RemoveFlows {
			step.RemoveFlows = append(step.RemoveFlows, sim.FlowId(id))
		}
		for _, f := range ts.AddFlows {
			step.AddFlows = append(step.AddFlows, sim.Flow{
				ID:             sim.FlowId(f.FlowID),
				FrameSizeBytes: f.PackageSize,
				PeriodUs:       f.Period,
				Source:         sim.NetworkNodeId(f.Source),
				Destination:    sim.NetworkNodeId(f.Destination),
			})
		}
		steps = append(steps, step)
	}
	return steps, nil
}
