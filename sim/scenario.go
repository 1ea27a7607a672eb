// ScenarioDriver: per time step, process removals, invoke the
// candidate-path oracle for new flows, run defensive then optional
// offensive planning, reconcile the best solution, and optionally verify
// (§4.6).

package sim

import (
	"sort"

	"github.com/google/uuid"

	"github.com/tsn-sched/tsn-sched/sim/trace"
)

// CandidatePathOracle is the candidate-path oracle interface consumed by
// the scenario driver (§6). Implementations live in sim/routing; this
// interface is declared here rather than imported so the scheduling core
// never depends on the out-of-scope route-enumeration package — Go's
// structural typing lets routing.DijkstraOverlap and routing.KShortest
// satisfy it without either package referencing the other.
type CandidatePathOracle interface {
	FindRoutes(g *Graph, source, destination NetworkNodeId, k int) [][]EgressQueueId
}

// TimeStep mirrors one scenario document time step (§3, §6).
type TimeStep struct {
	Time        int64
	AddFlows    []Flow
	RemoveFlows []FlowId
}

// ScenarioDriver owns the Graph and UtilizationList for one scenario run
// and drives them through every time step.
type ScenarioDriver struct {
	Graph             *Graph
	Util              *UtilizationList
	Oracle            CandidatePathOracle
	Solver            Scheduler
	CandidatePaths    int
	OffensivePlanning bool
	VerifySchedule    bool
	Trace             *trace.SimulationTrace

	active []Admission
}

// NewScenarioDriver creates a driver over an already-populated (but
// flow-free) graph. hyperCycle is fixed for the whole run — computed by
// the caller as the LCM of every period appearing anywhere in the
// scenario, since UtilizationList's slot ticks are only meaningful
// relative to one horizon (§9 does not address mid-run rehorizoning, so
// this rewrite pins H for the run's lifetime rather than resizing a live
// UtilizationList, which would invalidate every existing reservation's
// tick coordinates).
func NewScenarioDriver(g *Graph, hyperCycle int64, oracle CandidatePathOracle, solver Scheduler, candidatePaths int, offensive, verify bool, tr *trace.SimulationTrace) *ScenarioDriver {
	return &ScenarioDriver{
		Graph:             g,
		Util:              NewUtilizationList(g.QueueCount(), hyperCycle),
		Oracle:            oracle,
		Solver:            solver,
		CandidatePaths:    candidatePaths,
		OffensivePlanning: offensive,
		VerifySchedule:    verify,
		Trace:             tr,
	}
}

// RunTimeStep executes one scenario time step and returns its defensive,
// (optional) offensive, and aggregated records (§4.6 "three log
// records").
func (d *ScenarioDriver) RunTimeStep(step TimeStep) ([]trace.TimeStepRecord, error) {
	stepID := uuid.New()

	// 1. Apply removals.
	if len(step.RemoveFlows) > 0 {
		d.Util.RemoveConfigs(step.RemoveFlows)
		for _, fid := range step.RemoveFlows {
			d.Graph.RemoveFlow(fid)
		}
		d.active = subtractAdmissions(d.active, step.RemoveFlows)
	}

	// 2. Route and register new flows.
	for _, f := range step.AddFlows {
		d.Graph.AddFlow(f)
		routes := d.Oracle.FindRoutes(d.Graph, f.Source, f.Destination, d.CandidatePaths)
		for _, path := range routes {
			d.Graph.InsertConfiguration(f.ID, path)
		}
	}
	activeIDs := admittedFlowIDs(d.active)
	required := nonActiveFlowIDs(d.Graph, activeIDs)

	// 3. Defensive planning: mutates d.Util directly.
	preDefensive := d.Util.Copy()
	defensiveAdmitted := d.Solver.Solve(d.Graph, nil, required, d.Util)

	// 4. Metrics from the (now defensive) util.
	defensiveMetrics := ComputeMetrics(d.Graph, d.Util, "defensive", defensiveAdmitted, len(required), 0, 0)
	records := []trace.TimeStepRecord{toRecord(stepID, step.Time, defensiveMetrics)}

	adopted := defensiveAdmitted
	adoptedOffensive := false

	// 5. Offensive planning, if enabled and defensive left flows unadmitted.
	if d.OffensivePlanning && len(defensiveAdmitted) < len(required) {
		trial := preDefensive.Copy()
		offensiveAdmitted := d.Solver.Solve(d.Graph, activeIDs, required, trial)
		if len(offensiveAdmitted) == len(activeIDs)+len(required) {
			offensiveMetrics := ComputeMetrics(d.Graph, trial, "offensive", offensiveAdmitted, len(required), 0, 0)
			records = append(records, toRecord(stepID, step.Time, offensiveMetrics))

			// 6. Adopt: keep defensive unless it left gaps AND offensive
			// carries strictly more traffic.
			if len(defensiveAdmitted) < len(required) && offensiveMetrics.IngressTrafficMbps > defensiveMetrics.IngressTrafficMbps {
				d.Util.AssignFrom(trial)
				adopted = offensiveAdmitted
				adoptedOffensive = true
			}
		}
	}

	// 7. Update the active set with whichever solution was adopted.
	if adoptedOffensive {
		d.active = adopted
	} else {
		d.active = append(d.active, adopted...)
	}

	aggregated := ComputeMetrics(d.Graph, d.Util, "aggregated", d.active, len(d.active), 0, 0)
	records = append(records, toRecord(stepID, step.Time, aggregated))

	// 8. Verify, if requested.
	if d.VerifySchedule {
		if err := VerifySchedule(d.Graph, d.Util); err != nil {
			return records, err
		}
	}

	if d.Trace != nil {
		for _, r := range records {
			d.Trace.RecordTimeStep(r)
		}
	}
	return records, nil
}

func toRecord(stepID uuid.UUID, time int64, m MetricsReport) trace.TimeStepRecord {
	return trace.TimeStepRecord{
		StepID:             stepID,
		Time:               time,
		PlanningMode:       m.PlanningMode,
		FlowsScheduled:     m.FlowsScheduled,
		FlowsTotal:         m.FlowsTotal,
		IngressTrafficMbps: m.IngressTrafficMbps,
		NumberOfFrames:     m.NumberOfFrames,
		SolvingTimeUs:      m.SolvingTimeUs,
		ConfigTimeUs:       m.ConfigTimeUs,
		MaxQueueSize:       m.MaxQueueSize,
		AvgSchedulingTable: m.AvgSchedulingTable,
		MaxSchedulingTable: m.MaxSchedulingTable,
	}
}

func admittedFlowIDs(admitted []Admission) []FlowId {
	out := make([]FlowId, 0, len(admitted))
	for _, a := range admitted {
		out = append(out, a.Flow)
	}
	return out
}

func subtractAdmissions(from []Admission, remove []FlowId) []Admission {
	removed := make(map[FlowId]bool, len(remove))
	for _, id := range remove {
		removed[id] = true
	}
	out := make([]Admission, 0, len(from))
	for _, a := range from {
		if !removed[a.Flow] {
			out = append(out, a)
		}
	}
	return out
}

func nonActiveFlowIDs(g *Graph, active []FlowId) []FlowId {
	activeSet := make(map[FlowId]bool, len(active))
	for _, id := range active {
		activeSet[id] = true
	}
	var out []FlowId
	for _, f := range g.Flows() {
		if !activeSet[f.ID] {
			out = append(out, f.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
