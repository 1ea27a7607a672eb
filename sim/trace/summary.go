package trace

// TraceSummary aggregates statistics from a SimulationTrace's aggregated
// records (one per time step, PlanningMode == "aggregated").
type TraceSummary struct {
	TimeSteps          int
	TotalFlowsScheduled int
	TotalFlowsRejected  int
	MeanIngressTraffic  float64
	MaxQueueSize        int64
	MaxSchedulingTable  int64
}

// Summarize computes aggregate statistics from a SimulationTrace. Safe
// for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}

	var totalTraffic float64
	for _, r := range st.Records {
		if r.PlanningMode != "aggregated" {
			continue
		}
		summary.TimeSteps++
		summary.TotalFlowsScheduled += r.FlowsScheduled
		summary.TotalFlowsRejected += r.FlowsTotal - r.FlowsScheduled
		totalTraffic += r.IngressTrafficMbps
		if r.MaxQueueSize > summary.MaxQueueSize {
			summary.MaxQueueSize = r.MaxQueueSize
		}
		if r.MaxSchedulingTable > summary.MaxSchedulingTable {
			summary.MaxSchedulingTable = r.MaxSchedulingTable
		}
	}
	if summary.TimeSteps > 0 {
		summary.MeanIngressTraffic = totalTraffic / float64(summary.TimeSteps)
	}
	return summary
}
