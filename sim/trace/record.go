// Package trace provides per-time-step decision recording for the
// scenario driver (§4.6 "Time-step results are emitted as three log
// records"). This package has no dependency on sim/ core types beyond
// what MetricsReport already carries — it stores pure data.
package trace

import "github.com/google/uuid"

// TimeStepRecord captures one planning-mode outcome (defensive,
// offensive, or aggregated) for a single scenario time step. RunID
// correlates every record collected by one SimulationTrace (stamped by
// RecordTimeStep);
// StepID correlates the (up to) three records of a single time step.
type TimeStepRecord struct {
	RunID        uuid.UUID
	StepID       uuid.UUID
	Time         int64
	PlanningMode string

	FlowsScheduled     int
	FlowsTotal         int
	IngressTrafficMbps float64
	NumberOfFrames     int64
	SolvingTimeUs      int64
	ConfigTimeUs       int64
	MaxQueueSize       int64
	AvgSchedulingTable float64
	MaxSchedulingTable int64
}
