package sim

import (
	"math"
	"testing"
)

func ratedGraph(t *testing.T) (*Graph, *Flow, *Configuration, *Configuration) {
	t.Helper()
	g := NewGraph()
	g.InsertNetworkDevice([]NetworkNodeId{1})
	g.InsertNetworkDevice([]NetworkNodeId{0, 2})
	g.InsertNetworkDevice([]NetworkNodeId{1})
	g.AddFlow(Flow{ID: 1, Source: 0, Destination: 2, PeriodUs: 1000, FrameSizeBytes: 125})

	q0 := g.EgressQueuesOf(0)[0].ID
	q1 := g.EgressQueuesOf(1)[1].ID
	short := g.InsertConfiguration(1, []EgressQueueId{q0, q1})
	long := g.InsertConfiguration(1, []EgressQueueId{q0, q1, q0, q1}) // artificially longer path
	return g, g.Flow(1), g.Configuration(short), g.Configuration(long)
}

func TestPathLength_RatesByHopCount(t *testing.T) {
	g, flow, short, long := ratedGraph(t)
	u := NewUtilizationList(g.QueueCount(), flow.PeriodUs)
	r := PathLength{}
	if got := r.Rate(short, flow, g, u); got != 2 {
		t.Errorf("short path rating = %v, want 2", got)
	}
	if got := r.Rate(long, flow, g, u); got != 4 {
		t.Errorf("long path rating = %v, want 4", got)
	}
}

func TestBottleneck_RatesByMinimumFreeCapacity(t *testing.T) {
	g, flow, short, _ := ratedGraph(t)
	u := NewUtilizationList(g.QueueCount(), flow.PeriodUs)
	q0 := short.Path[0]
	u.ReserveSlot(SlotReservationRequest{Queue: q0, Start: 0, NextStart: flow.PeriodUs - 10, Arrival: 0}, 99, 99)

	r := Bottleneck{}
	got := r.Rate(short, flow, g, u)
	if got != 10 {
		t.Errorf("Bottleneck rating = %v, want 10 (the constrained queue's remaining free capacity)", got)
	}
}

func TestEndToEndDelay_InfiniteWhenInfeasible(t *testing.T) {
	g, flow, short, _ := ratedGraph(t)
	u := NewUtilizationList(g.QueueCount(), flow.PeriodUs)
	for _, q := range short.Path {
		u.ReserveSlot(SlotReservationRequest{Queue: q, Start: 0, NextStart: flow.PeriodUs, Arrival: 0}, 99, 99)
	}
	r := EndToEndDelay{}
	if got := r.Rate(short, flow, g, u); !math.IsInf(got, 1) {
		t.Errorf("EndToEndDelay rating = %v, want +Inf on a fully reserved path", got)
	}
}

func TestNewConfigRater_KnownIndices(t *testing.T) {
	for i := 1; i <= 4; i++ {
		if !IsValidConfigRaterIndex(i) {
			t.Errorf("IsValidConfigRaterIndex(%d) = false", i)
		}
		if NewConfigRater(i) == nil {
			t.Errorf("NewConfigRater(%d) returned nil", i)
		}
	}
}

func TestNewConfigRater_UnknownIndexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for unknown config rater index")
		}
	}()
	NewConfigRater(0)
}

func TestLowID_RatesByInverseFlowId(t *testing.T) {
	g, flow, short, _ := ratedGraph(t)
	u := NewUtilizationList(g.QueueCount(), flow.PeriodUs)
	rating := LowID{}.Rate(short, flow, g, u)
	if rating.Primary != celfK/float64(flow.ID) {
		t.Errorf("Primary = %v, want %v", rating.Primary, celfK/float64(flow.ID))
	}
	if rating.Tiebreak != -float64(short.ID) {
		t.Errorf("Tiebreak = %v, want %v", rating.Tiebreak, -float64(short.ID))
	}
}

func TestLowPeriodLowUtilization_PickUpdatesAccumulator(t *testing.T) {
	// GIVEN a fresh rater and one committed placement
	g, flow, short, _ := ratedGraph(t)
	u := NewUtilizationList(g.QueueCount(), flow.PeriodUs)
	r := NewLowPeriodLowUtilization()
	before := r.Rate(short, flow, g, u)

	// WHEN Pick records the commitment
	r.Pick(short, flow, g, u)
	after := r.Rate(short, flow, g, u)

	// THEN the path looks more utilized afterward, lowering its rating's
	// attractiveness (smaller 1/util term)
	if after.Primary >= before.Primary {
		t.Errorf("expected rating to decrease after Pick: before=%v after=%v", before.Primary, after.Primary)
	}
}

func TestNewCelfRater_KnownIndices(t *testing.T) {
	for i := 1; i <= 6; i++ {
		if !IsValidCelfRaterIndex(i) {
			t.Errorf("IsValidCelfRaterIndex(%d) = false", i)
		}
		if NewCelfRater(i) == nil {
			t.Errorf("NewCelfRater(%d) returned nil", i)
		}
	}
}

func TestNewCelfRater_UnknownIndexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for unknown celf rater index")
		}
	}()
	NewCelfRater(0)
}
