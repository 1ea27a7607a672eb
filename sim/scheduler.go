// The Scheduler interface, the shared admitActive helper and the H2S
// policy (§4.4); CELF, EDF, FirstFit and Hermes live in scheduler_*.go.
// Each policy drives Placement against a UtilizationList, and all
// implement the same two-phase admission contract.

package sim

import "sort"

// Admission pairs an admitted flow with the configuration chosen for it.
type Admission struct {
	Flow   FlowId
	Config ConfigId
}

// Scheduler consumes a required flow set (and, for offensive replanning,
// an already-admitted active set) and returns a maximal admitted subset.
//
// Semantics (§4.4): when active is non-empty, the scheduler MUST first
// admit every flow in active into u; if any fails, it returns nil — the
// empty result signals offensive replanning failed and the caller must
// keep its defensive solution. required is then scheduled best-effort.
type Scheduler interface {
	Solve(g *Graph, active []FlowId, required []FlowId, u *UtilizationList) []Admission
}

func ascendingFlowIDs(ids []FlowId) []FlowId {
	out := append([]FlowId(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// admitActive re-admits every flow in active into u, ascending FlowId for
// determinism (§9), trying each of the flow's configurations in
// ascending ConfigId order with the given placement policy. Returns
// (nil, false) the moment any active flow cannot be placed at all.
func admitActive(g *Graph, u *UtilizationList, active []FlowId, place PlacementFunc) ([]Admission, bool) {
	var out []Admission
	for _, fid := range ascendingFlowIDs(active) {
		flow := g.Flow(fid)
		placed := false
		for _, cid := range flow.Configs {
			cfg := g.Configuration(cid)
			if place(u, cfg, flow) {
				out = append(out, Admission{Flow: fid, Config: cid})
				placed = true
				break
			}
		}
		if !placed {
			return nil, false
		}
	}
	return out, true
}

// H2S is the Hierarchical Heuristic Scheduler (§4.4.1).
type H2S struct {
	Sorter FlowSorter
	Rater  ConfigRater
	Place  PlacementFunc
}

// Solve implements Scheduler for H2S.
func (h *H2S) Solve(g *Graph, active []FlowId, required []FlowId, u *UtilizationList) []Admission {
	var admitted []Admission
	if len(active) > 0 {
		a, ok := admitActive(g, u, active, h.Place)
		if !ok {
			return nil
		}
		admitted = a
	}

	flows := make([]*Flow, 0, len(required))
	for _, fid := range required {
		flows = append(flows, g.Flow(fid))
	}
	h.Sorter.Order(flows, g)

	for _, flow := range flows {
		cid, ok := h.bestConfig(g, u, flow)
		if ok {
			admitted = append(admitted, Admission{Flow: flow.ID, Config: cid})
		}
	}
	return admitted
}

// bestConfig rates every candidate configuration of flow (lower is
// better, ties broken by lower ConfigId) and tries placements in
// ascending rating order, stopping at the first successful placement.
func (h *H2S) bestConfig(g *Graph, u *UtilizationList, flow *Flow) (ConfigId, bool) {
	type rated struct {
		cfg    *Configuration
		rating float64
	}
	candidates := make([]rated, 0, len(flow.Configs))
	for _, cid := range flow.Configs {
		cfg := g.Configuration(cid)
		candidates = append(candidates, rated{cfg: cfg, rating: h.Rater.Rate(cfg, flow, g, u)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rating != candidates[j].rating {
			return candidates[i].rating < candidates[j].rating
		}
		return candidates[i].cfg.ID < candidates[j].cfg.ID
	})
	for _, c := range candidates {
		if h.Place(u, c.cfg, flow) {
			return c.cfg.ID, true
		}
	}
	return 0, false
}
