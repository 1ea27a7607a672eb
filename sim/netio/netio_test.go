package netio

import (
	"strings"
	"testing"
)

func TestParseNetwork_BuildsUndirectedAdjacency(t *testing.T) {
	input := "0 1\n1 2\n"
	g, err := ParseNetwork(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseNetwork returned %v", err)
	}
	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount = %d, want 3", g.NodeCount())
	}
	if len(g.EgressQueuesOf(0)) != 1 || len(g.EgressQueuesOf(1)) != 2 || len(g.EgressQueuesOf(2)) != 1 {
		t.Errorf("unexpected degree distribution: node0=%d node1=%d node2=%d",
			len(g.EgressQueuesOf(0)), len(g.EgressQueuesOf(1)), len(g.EgressQueuesOf(2)))
	}
}

func TestParseNetwork_SkipsCommentsAndBlankLines(t *testing.T) {
	input := "# a comment\n\n% another comment\n0 1\n"
	g, err := ParseNetwork(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseNetwork returned %v", err)
	}
	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d, want 2", g.NodeCount())
	}
}

func TestParseNetwork_IgnoresSelfLoops(t *testing.T) {
	input := "0 0\n0 1\n"
	g, err := ParseNetwork(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseNetwork returned %v", err)
	}
	if len(g.EgressQueuesOf(0)) != 1 {
		t.Errorf("EgressQueuesOf(0) len = %d, want 1 (self-loop must not add a queue)", len(g.EgressQueuesOf(0)))
	}
}

func TestParseNetwork_DeduplicatesRepeatedEdges(t *testing.T) {
	input := "0 1\n0 1\n1 0\n"
	g, err := ParseNetwork(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseNetwork returned %v", err)
	}
	if len(g.EgressQueuesOf(0)) != 1 {
		t.Errorf("EgressQueuesOf(0) len = %d, want 1 (duplicate edges must collapse)", len(g.EgressQueuesOf(0)))
	}
}

func TestParseNetwork_SkipsLineWithFewerThanTwoNumbers(t *testing.T) {
	input := "0\n0 1\n"
	g, err := ParseNetwork(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseNetwork returned %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2 (single-token line ignored)", g.NodeCount())
	}
}

func TestParseScenario_ParsesAddAndRemove(t *testing.T) {
	doc := `{
		"time_steps": [
			{
				"time": 0,
				"addFlows": [
					{"flowID": 1, "package size": 125, "period": 1000, "source": 0, "destination": 1}
				],
				"removeFlows": []
			},
			{
				"time": 1000,
				"addFlows": [],
				"removeFlows": [1]
			}
		]
	}`
	steps, err := ParseScenario(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseScenario returned %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("len(steps) = %d, want 2", len(steps))
	}
	if len(steps[0].AddFlows) != 1 || steps[0].AddFlows[0].FrameSizeBytes != 125 {
		t.Errorf("step0 AddFlows = %+v, want one flow with FrameSizeBytes 125", steps[0].AddFlows)
	}
	if len(steps[1].RemoveFlows) != 1 || steps[1].RemoveFlows[0] != 1 {
		t.Errorf("step1 RemoveFlows = %v, want [1]", steps[1].RemoveFlows)
	}
}

func TestParseScenario_RejectsInvalidJSON(t *testing.T) {
	if _, err := ParseScenario(strings.NewReader("{not json")); err == nil {
		t.Errorf("expected an error decoding malformed JSON")
	}
}

func TestParseScenario_EmptyDocumentYieldsNoSteps(t *testing.T) {
	steps, err := ParseScenario(strings.NewReader(`{"time_steps": []}`))
	if err != nil {
		t.Fatalf("ParseScenario returned %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("len(steps) = %d, want 0", len(steps))
	}
}
