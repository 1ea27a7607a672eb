// Three-layer arena: network topology (CSR), flows keyed by FlowId, and
// configurations (candidate paths) keyed by ConfigId. Not thread-safe by
// contract — the whole scheduling core is single-threaded (§5).

package sim

import "sort"

// EgressQueue is the transmit buffer/port on the outgoing side of a
// directed link. UsedBy is a back-reference only; Configuration is the
// owner of the relation (§9 "Back-references without ownership").
type EgressQueue struct {
	ID         EgressQueueId
	Dest       NetworkNodeId
	EndDevice  bool // true iff the originating node has degree 1
	UsedBy     []ConfigId
}

// Flow is a periodic source-to-destination stream.
type Flow struct {
	ID             FlowId
	FrameSizeBytes int
	PeriodUs       int64
	Source         NetworkNodeId
	Destination    NetworkNodeId
	Configs        []ConfigId
}

// Configuration is one candidate path (sequence of egress queues) for a flow.
type Configuration struct {
	ID   ConfigId
	Flow FlowId
	Path []EgressQueueId
}

// Graph is the multi-layer arena consulted by every other component.
type Graph struct {
	// network layer: CSR. nodeOffset has len(nodes)+1 entries; queues[nodeOffset[n]:nodeOffset[n+1]]
	// are node n's outgoing egress queues.
	nodeOffset []int
	queues     []EgressQueue

	flows   map[FlowId]*Flow
	configs map[ConfigId]*Configuration

	nextConfigID ConfigId
}

// NewGraph returns an empty Graph ready for insert_network_device calls.
func NewGraph() *Graph {
	return &Graph{
		nodeOffset: []int{0},
		flows:      make(map[FlowId]*Flow),
		configs:    make(map[ConfigId]*Configuration),
	}
}

// InsertNetworkDevice appends a node and its outgoing edges to neighbors.
// end_device is set iff the node has exactly one neighbor. Returns the
// new node's id.
func (g *Graph) InsertNetworkDevice(neighbors []NetworkNodeId) NetworkNodeId {
	node := NetworkNodeId(len(g.nodeOffset) - 1)
	endDevice := len(neighbors) == 1
	for _, dest := range neighbors {
		g.queues = append(g.queues, EgressQueue{
			ID:        EgressQueueId(len(g.queues)),
			Dest:      dest,
			EndDevice: endDevice,
		})
	}
	g.nodeOffset = append(g.nodeOffset, len(g.queues))
	return node
}

// NodeCount returns the number of network nodes.
func (g *Graph) NodeCount() int { return len(g.nodeOffset) - 1 }

// QueueCount returns the total number of egress queues across all nodes.
func (g *Graph) QueueCount() int { return len(g.queues) }

// FlowCount returns the number of currently registered flows.
func (g *Graph) FlowCount() int { return len(g.flows) }

// ConfigCount returns the number of currently registered configurations.
func (g *Graph) ConfigCount() int { return len(g.configs) }

// EgressQueuesOf returns the view of node's outgoing egress queues.
// Panics (PreconditionViolation) if node is unknown.
func (g *Graph) EgressQueuesOf(node NetworkNodeId) []EgressQueue {
	if int(node) < 0 || int(node) >= g.NodeCount() {
		panicUnknown("node", node)
	}
	return g.queues[g.nodeOffset[node]:g.nodeOffset[node+1]]
}

// NodeOf returns the network node that owns egress queue id (the node
// whose CSR range contains it). Panics if unknown.
func (g *Graph) NodeOf(id EgressQueueId) NetworkNodeId {
	if int(id) < 0 || int(id) >= len(g.queues) {
		panicUnknown("queue", id)
	}
	n := sort.Search(len(g.nodeOffset)-1, func(i int) bool { return g.nodeOffset[i+1] > int(id) })
	return NetworkNodeId(n)
}

// Queue returns the egress queue for id. Panics if unknown.
func (g *Graph) Queue(id EgressQueueId) *EgressQueue {
	if int(id) < 0 || int(id) >= len(g.queues) {
		panicUnknown("queue", id)
	}
	return &g.queues[id]
}

// Flow returns the flow for id. Panics if unknown.
func (g *Graph) Flow(id FlowId) *Flow {
	f, ok := g.flows[id]
	if !ok {
		panicUnknown("flow", id)
	}
	return f
}

// HasFlow reports whether id is currently registered.
func (g *Graph) HasFlow(id FlowId) bool {
	_, ok := g.flows[id]
	return ok
}

// Flows returns all registered flows ordered by ascending FlowId, for
// deterministic iteration (§9 "Deterministic tie-breaking").
func (g *Graph) Flows() []*Flow {
	ids := make([]FlowId, 0, len(g.flows))
	for id := range g.flows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Flow, len(ids))
	for i, id := range ids {
		out[i] = g.flows[id]
	}
	return out
}

// Configuration returns the configuration for id. Panics if unknown.
func (g *Graph) Configuration(id ConfigId) *Configuration {
	c, ok := g.configs[id]
	if !ok {
		panicUnknown("config", id)
	}
	return c
}

// AddFlow registers a new flow. The caller supplies the FlowId (scenario
// files carry externally assigned flow ids).
func (g *Graph) AddFlow(f Flow) {
	cp := f
	cp.Configs = append([]ConfigId(nil), f.Configs...)
	g.flows[f.ID] = &cp
}

// RemoveFlow erases the flow, all of its configurations, and all
// back-references to those configurations atomically. Unknown id is a
// no-op (§4.1).
func (g *Graph) RemoveFlow(id FlowId) {
	f, ok := g.flows[id]
	if !ok {
		return
	}
	for _, cid := range append([]ConfigId(nil), f.Configs...) {
		g.removeConfiguration(cid)
	}
	delete(g.flows, id)
}

func (g *Graph) removeConfiguration(id ConfigId) {
	cfg, ok := g.configs[id]
	if !ok {
		return
	}
	for _, qid := range cfg.Path {
		q := &g.queues[qid]
		q.UsedBy = removeConfigID(q.UsedBy, id)
	}
	delete(g.configs, id)
}

func removeConfigID(list []ConfigId, id ConfigId) []ConfigId {
	for i, c := range list {
		if c == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// InsertConfiguration assigns the next ConfigId, stores the configuration,
// appends it to flow.Configs, and appends it to the UsedBy list of every
// queue on path. path is copied so the caller's slice and the stored
// Configuration never alias the same backing array (§9 Open Question i).
func (g *Graph) InsertConfiguration(flow FlowId, path []EgressQueueId) ConfigId {
	f, ok := g.flows[flow]
	if !ok {
		panicUnknown("flow", flow)
	}
	id := g.nextConfigID
	g.nextConfigID++

	ownedPath := append([]EgressQueueId(nil), path...)
	g.configs[id] = &Configuration{ID: id, Flow: flow, Path: ownedPath}
	f.Configs = append(f.Configs, id)

	for _, qid := range ownedPath {
		if int(qid) < 0 || int(qid) >= len(g.queues) {
			panicUnknown("queue", qid)
		}
		q := &g.queues[qid]
		q.UsedBy = append(q.UsedBy, id)
	}
	return id
}
