package trace

import "github.com/google/uuid"

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures all per-time-step planning records.
	TraceLevelSteps TraceLevel = "steps"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a
// recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects TimeStepRecords during one scenario run.
type SimulationTrace struct {
	RunID   uuid.UUID
	Config  TraceConfig
	Records []TimeStepRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording,
// stamped with a fresh RunID correlating every record it collects.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		RunID:   uuid.New(),
		Config:  config,
		Records: make([]TimeStepRecord, 0),
	}
}

// RecordTimeStep appends a planning-mode record, stamping it with the
// trace's RunID. A no-op when the trace level is TraceLevelNone.
func (st *SimulationTrace) RecordTimeStep(record TimeStepRecord) {
	if st.Config.Level == TraceLevelNone {
		return
	}
	record.RunID = st.RunID
	st.Records = append(st.Records, record)
}
