package sim

import "testing"

func TestHermesPlaceFlow_CommitsAllFramesMultiHop(t *testing.T) {
	// GIVEN a flow crossing two hops over a small hyper-cycle
	g := NewGraph()
	g.InsertNetworkDevice([]NetworkNodeId{1})
	g.InsertNetworkDevice([]NetworkNodeId{0, 2})
	g.InsertNetworkDevice([]NetworkNodeId{1})
	g.AddFlow(Flow{ID: 1, Source: 0, Destination: 2, PeriodUs: 100, FrameSizeBytes: 125})
	q0 := g.EgressQueuesOf(0)[0].ID
	q1 := g.EgressQueuesOf(1)[1].ID
	cid := g.InsertConfiguration(1, []EgressQueueId{q0, q1})
	cfg := g.Configuration(cid)
	flow := g.Flow(1)

	u := NewUtilizationList(g.QueueCount(), 300) // 3 frames

	// WHEN HermesPlaceFlow places it
	ok := HermesPlaceFlow(u, cfg, flow)

	// THEN both hops hold one reservation per frame
	if !ok {
		t.Fatalf("HermesPlaceFlow failed unexpectedly")
	}
	if got := len(u.Reserved(q0)); got != 3 {
		t.Errorf("Reserved(q0) len = %d, want 3", got)
	}
	if got := len(u.Reserved(q1)); got != 3 {
		t.Errorf("Reserved(q1) len = %d, want 3", got)
	}
}

func TestHermesPlaceFlow_RollsBackAllHopsOnFailure(t *testing.T) {
	// GIVEN a two-hop flow whose second hop is entirely booked
	g := NewGraph()
	g.InsertNetworkDevice([]NetworkNodeId{1})
	g.InsertNetworkDevice([]NetworkNodeId{0, 2})
	g.InsertNetworkDevice([]NetworkNodeId{1})
	g.AddFlow(Flow{ID: 1, Source: 0, Destination: 2, PeriodUs: 100, FrameSizeBytes: 125})
	q0 := g.EgressQueuesOf(0)[0].ID
	q1 := g.EgressQueuesOf(1)[1].ID
	cid := g.InsertConfiguration(1, []EgressQueueId{q0, q1})
	cfg := g.Configuration(cid)
	flow := g.Flow(1)

	u := NewUtilizationList(g.QueueCount(), 100)
	u.ReserveSlot(SlotReservationRequest{Queue: q1, Start: 0, NextStart: 100, Arrival: 0}, 99, 99)

	// WHEN HermesPlaceFlow attempts to place it
	ok := HermesPlaceFlow(u, cfg, flow)

	// THEN it fails and leaves q0 untouched (no partial commit)
	if ok {
		t.Fatalf("expected HermesPlaceFlow to fail when the second hop is fully booked")
	}
	if got := len(u.Reserved(q0)); got != 0 {
		t.Errorf("Reserved(q0) = %d reservations, want 0 after rollback", got)
	}
}

func TestHermesPlaceFlow_RejectsOverlongPath(t *testing.T) {
	g := NewGraph()
	g.InsertNetworkDevice([]NetworkNodeId{1})
	g.InsertNetworkDevice([]NetworkNodeId{0})
	g.AddFlow(Flow{ID: 1, Source: 0, Destination: 1, PeriodUs: 100, FrameSizeBytes: 125})
	q0 := g.EgressQueuesOf(0)[0].ID

	path := make([]EgressQueueId, hermesPhaseGuard+1)
	for i := range path {
		path[i] = q0
	}
	cid := g.InsertConfiguration(1, path)
	cfg := g.Configuration(cid)
	flow := g.Flow(1)

	u := NewUtilizationList(g.QueueCount(), 100)
	if HermesPlaceFlow(u, cfg, flow) {
		t.Errorf("expected HermesPlaceFlow to reject a path longer than the phase guard")
	}
}
