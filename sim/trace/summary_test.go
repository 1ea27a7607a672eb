package trace

import "testing"

func TestSummarize_NilTraceYieldsZeroValue(t *testing.T) {
	s := Summarize(nil)
	if s.TimeSteps != 0 || s.MeanIngressTraffic != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero value", s)
	}
}

func TestSummarize_OnlyCountsAggregatedRecords(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	st.RecordTimeStep(TimeStepRecord{Time: 0, PlanningMode: "defensive", FlowsScheduled: 1, FlowsTotal: 2})
	st.RecordTimeStep(TimeStepRecord{Time: 0, PlanningMode: "aggregated", FlowsScheduled: 1, FlowsTotal: 2, IngressTrafficMbps: 4, MaxQueueSize: 3, MaxSchedulingTable: 5})
	st.RecordTimeStep(TimeStepRecord{Time: 1000, PlanningMode: "aggregated", FlowsScheduled: 2, FlowsTotal: 2, IngressTrafficMbps: 6, MaxQueueSize: 1, MaxSchedulingTable: 2})

	s := Summarize(st)
	if s.TimeSteps != 2 {
		t.Errorf("TimeSteps = %d, want 2 (defensive record excluded)", s.TimeSteps)
	}
	if s.TotalFlowsScheduled != 3 {
		t.Errorf("TotalFlowsScheduled = %d, want 3", s.TotalFlowsScheduled)
	}
	if s.TotalFlowsRejected != 1 {
		t.Errorf("TotalFlowsRejected = %d, want 1", s.TotalFlowsRejected)
	}
	if s.MeanIngressTraffic != 5 {
		t.Errorf("MeanIngressTraffic = %v, want 5", s.MeanIngressTraffic)
	}
	if s.MaxQueueSize != 3 {
		t.Errorf("MaxQueueSize = %d, want 3", s.MaxQueueSize)
	}
	if s.MaxSchedulingTable != 5 {
		t.Errorf("MaxSchedulingTable = %d, want 5", s.MaxSchedulingTable)
	}
}
