package sim

import "testing"

func TestCELF_ActiveSetFailFast(t *testing.T) {
	// GIVEN an active flow whose path is already fully booked
	g := schedulerGraph(t, 1, 1000, 125)
	u := NewUtilizationList(g.QueueCount(), 1000)
	q0 := g.EgressQueuesOf(0)[0].ID
	u.ReserveSlot(SlotReservationRequest{Queue: q0, Start: 0, NextStart: 1000, Arrival: 0}, 99, 99)

	c := &CELF{Rater: LowID{}, Place: ASAP}

	// WHEN CELF is asked to re-admit it
	admitted := c.Solve(g, []FlowId{1}, nil, u)

	// THEN the call fails fast
	if admitted != nil {
		t.Errorf("expected nil when active set cannot be re-admitted, got %v", admitted)
	}
}

func TestCELF_PicksHighestRatedConfigFirst(t *testing.T) {
	// GIVEN a flow with two configs on disjoint queues, one rated higher
	g := NewGraph()
	g.InsertNetworkDevice([]NetworkNodeId{1, 2})
	g.InsertNetworkDevice([]NetworkNodeId{0})
	g.InsertNetworkDevice([]NetworkNodeId{0})
	g.AddFlow(Flow{ID: 1, Source: 0, Destination: 1, PeriodUs: 1000, FrameSizeBytes: 125})
	qA := g.EgressQueuesOf(0)[0].ID
	qB := g.EgressQueuesOf(0)[1].ID
	cidA := g.InsertConfiguration(1, []EgressQueueId{qA})
	g.InsertConfiguration(1, []EgressQueueId{qB})

	u := NewUtilizationList(g.QueueCount(), 1000)
	c := &CELF{Rater: LowID{}, Place: ASAP} // LowID rates purely by flow id/config id, deterministic
	admitted := c.Solve(g, nil, []FlowId{1}, u)

	if len(admitted) != 1 {
		t.Fatalf("admitted = %v, want exactly one admission", admitted)
	}
	if admitted[0].Config != cidA {
		t.Errorf("admitted config = %v, want %v (LowID rates the lower ConfigId higher)", admitted[0].Config, cidA)
	}
}
