// MetricsReport: derived statistics computed from a finalized
// UtilizationList (§2, §6 Output). Read-only; never mutates u or g.

package sim

// MetricsReport carries the per-time-step, per-planning-mode figures
// emitted by the scenario driver's log records.
type MetricsReport struct {
	PlanningMode        string
	FlowsScheduled      int
	FlowsTotal          int
	IngressTrafficMbps  float64
	NumberOfFrames      int64
	SolvingTimeUs       int64
	ConfigTimeUs        int64
	MaxQueueSize        int64
	AvgSchedulingTable  float64
	MaxSchedulingTable  int64
}

// ComputeMetrics derives a MetricsReport from the current state of u for
// the flows in admitted, out of flowsTotal candidates. solvingTime and
// configTime are timing instrumentation supplied by the caller (the
// scenario driver owns the clock; this package never reads one).
func ComputeMetrics(g *Graph, u *UtilizationList, mode string, admitted []Admission, flowsTotal int, solvingTimeUs, configTimeUs int64) MetricsReport {
	report := MetricsReport{
		PlanningMode:   mode,
		FlowsScheduled: len(admitted),
		FlowsTotal:     flowsTotal,
		SolvingTimeUs:  solvingTimeUs,
		ConfigTimeUs:   configTimeUs,
	}

	var totalBytes int64
	var frames int64
	for _, a := range admitted {
		flow := g.Flow(a.Flow)
		frames += u.HyperCycle() / flow.PeriodUs
		totalBytes += int64(flow.FrameSizeBytes) * (u.HyperCycle() / flow.PeriodUs)
	}
	report.NumberOfFrames = frames
	if u.HyperCycle() > 0 {
		// bytes -> bits -> Mbit/s over the hyper-cycle (microseconds).
		report.IngressTrafficMbps = float64(totalBytes) * 8 / float64(u.HyperCycle())
	}

	var maxQueue int64
	var tableTotal, tableCount int64
	for q := 0; q < u.QueueCount(); q++ {
		qid := EgressQueueId(q)
		tableLen := int64(len(u.Reserved(qid)))
		tableTotal += tableLen
		tableCount++
		if tableLen > report.MaxSchedulingTable {
			report.MaxSchedulingTable = tableLen
		}
		if depth := maxConcurrentArrivals(u.Arrivals(qid)); depth > maxQueue {
			maxQueue = depth
		}
	}
	report.MaxQueueSize = maxQueue
	if tableCount > 0 {
		report.AvgSchedulingTable = float64(tableTotal) / float64(tableCount)
	}
	return report
}

// maxConcurrentArrivals approximates queue depth from the arrival log:
// the largest number of arrivals logged at the same tick. Frames that
// arrived at different ticks but wait in the queue at the same time are
// not counted together, since UtilizationList does not track dwell time
// per frame.
func maxConcurrentArrivals(arrivals []Arrival) int64 {
	if len(arrivals) == 0 {
		return 0
	}
	counts := make(map[int64]int64, len(arrivals))
	for _, a := range arrivals {
		counts[a.Tick]++
	}
	var max int64
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return max
}
