// FirstFit: the simplest baseline scheduler (§4.4.4).

package sim

// FirstFit sorts required flows by FlowId ascending and tries ASAP
// placement on each flow's first configuration only.
type FirstFit struct{}

// Solve implements Scheduler for FirstFit.
func (FirstFit) Solve(g *Graph, active []FlowId, required []FlowId, u *UtilizationList) []Admission {
	var admitted []Admission
	if len(active) > 0 {
		a, ok := admitActive(g, u, active, ASAP)
		if !ok {
			u.Clear()
			a, ok = admitActive(g, u, active, ASAP)
			if !ok {
				return nil
			}
		}
		admitted = a
	}

	for _, fid := range ascendingFlowIDs(required) {
		flow := g.Flow(fid)
		if len(flow.Configs) == 0 {
			continue
		}
		cfg := g.Configuration(flow.Configs[0])
		if ASAP(u, cfg, flow) {
			admitted = append(admitted, Admission{Flow: fid, Config: cfg.ID})
		}
	}
	return admitted
}
