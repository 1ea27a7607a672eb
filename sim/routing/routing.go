// Package routing implements the candidate-path oracle consumed by the
// scenario driver (§6 "Candidate-path oracle (consumed)"): given a
// topology, source, destination and a desired count, it returns up to
// that many distinct hop sequences. Routing itself is deliberately out
// of scope for the scheduling core (spec §1) — this package is the
// pluggable collaborator the core calls through the Oracle interface.
//
// Both strategies share a weighted-Dijkstra subroutine (every egress
// queue costs one hop; the topology carries no link weights) built on a
// container/heap.Interface min-heap, the same heap idiom scheduler_celf.go
// and scheduler_edf.go use for their own priority queues.
package routing

import (
	"container/heap"

	sim "github.com/tsn-sched/tsn-sched/sim"
)

// Oracle is the candidate-path oracle interface.
type Oracle interface {
	FindRoutes(g *sim.Graph, source, destination sim.NetworkNodeId, k int) [][]sim.EgressQueueId
}

type pqItem struct {
	node sim.NetworkNodeId
	dist int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(pqItem))
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// shortestPath runs Dijkstra over the unweighted topology, refusing any
// queue in bannedQueues and any node in bannedNodes (other than source
// and destination themselves). Returns the hop sequence from source to
// destination, or nil if unreachable under the current bans.
func shortestPath(g *sim.Graph, source, destination sim.NetworkNodeId, bannedQueues map[sim.EgressQueueId]bool, bannedNodes map[sim.NetworkNodeId]bool) []sim.EgressQueueId {
	if source == destination {
		return []sim.EgressQueueId{}
	}

	dist := map[sim.NetworkNodeId]int{source: 0}
	via := make(map[sim.NetworkNodeId]sim.EgressQueueId)
	visited := make(map[sim.NetworkNodeId]bool)

	pq := &priorityQueue{{node: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == destination {
			break
		}
		for _, q := range g.EgressQueuesOf(cur.node) {
			if bannedQueues[q.ID] || (bannedNodes[q.Dest] && q.Dest != destination) {
				continue
			}
			nd := cur.dist + 1
			if d, ok := dist[q.Dest]; !ok || nd < d {
				dist[q.Dest] = nd
				via[q.Dest] = q.ID
				heap.Push(pq, pqItem{node: q.Dest, dist: nd})
			}
		}
	}

	if _, ok := dist[destination]; !ok {
		return nil
	}

	var path []sim.EgressQueueId
	node := destination
	for node != source {
		q := via[node]
		path = append([]sim.EgressQueueId{q}, path...)
		node = g.NodeOf(q)
	}
	return path
}

func pathKey(path []sim.EgressQueueId) string {
	key := make([]byte, 0, len(path)*4)
	for _, q := range path {
		key = append(key, byte(q), byte(q>>8), byte(q>>16), byte(q>>24))
	}
	return string(key)
}

// DijkstraOverlap returns the single shortest path first, then repeats
// the search with every found path's queues banned so successive routes
// avoid reusing the same links wherever a detour exists. Once no detour
// avoids the banned queues, the bans are cleared, but the unbanned search
// finds the first route again, so the search stops and fewer than k
// routes may be returned.
type DijkstraOverlap struct{}

// FindRoutes implements Oracle for DijkstraOverlap.
func (DijkstraOverlap) FindRoutes(g *sim.Graph, source, destination sim.NetworkNodeId, k int) [][]sim.EgressQueueId {
	if k < 1 {
		return nil
	}
	seen := make(map[string]bool)
	var routes [][]sim.EgressQueueId
	banned := make(map[sim.EgressQueueId]bool)

	for len(routes) < k {
		path := shortestPath(g, source, destination, banned, nil)
		if path == nil {
			if len(banned) == 0 {
				break // genuinely unreachable
			}
			banned = make(map[sim.EgressQueueId]bool) // exhausted overlap-free detours; allow reuse
			path = shortestPath(g, source, destination, banned, nil)
			if path == nil {
				break
			}
		}
		key := pathKey(path)
		if seen[key] {
			break // no further distinct routes exist
		}
		seen[key] = true
		routes = append(routes, path)
		for _, q := range path {
			banned[q] = true
		}
	}
	return routes
}

// KShortest finds up to k distinct, loopless shortest-to-longest routes
// via Yen's algorithm: the first route is the global shortest path; each
// subsequent route is found by, for every node along the previous best
// route, banning the edge that route used out of that node (and every
// node already visited up to that point), re-running Dijkstra from the
// "spur" node, and keeping the globally cheapest candidate produced.
type KShortest struct{}

// FindRoutes implements Oracle for KShortest.
func (KShortest) FindRoutes(g *sim.Graph, source, destination sim.NetworkNodeId, k int) [][]sim.EgressQueueId {
	if k < 1 {
		return nil
	}
	first := shortestPath(g, source, destination, nil, nil)
	if first == nil {
		if source == destination {
			return [][]sim.EgressQueueId{{}}
		}
		return nil
	}

	routes := [][]sim.EgressQueueId{first}
	seen := map[string]bool{pathKey(first): true}
	var candidates [][]sim.EgressQueueId

	for len(routes) < k {
		prev := routes[len(routes)-1]
		for i := range prev {
			spurNode := pathNode(g, source, prev, i)
			rootPath := append([]sim.EgressQueueId(nil), prev[:i]...)

			bannedQueues := make(map[sim.EgressQueueId]bool)
			for _, r := range routes {
				if len(r) > i && pathSharesRoot(r, rootPath) {
					bannedQueues[r[i]] = true
				}
			}
			bannedNodes := make(map[sim.NetworkNodeId]bool)
			n := source
			bannedNodes[n] = true
			for _, q := range rootPath {
				n = g.Queue(q).Dest
				bannedNodes[n] = true
			}

			spur := shortestPath(g, spurNode, destination, bannedQueues, bannedNodes)
			if spur == nil {
				continue
			}
			full := append(append([]sim.EgressQueueId(nil), rootPath...), spur...)
			key := pathKey(full)
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, full)
		}

		if len(candidates) == 0 {
			break
		}
		best := 0
		for i, c := range candidates {
			if len(c) < len(candidates[best]) {
				best = i
			}
		}
		routes = append(routes, candidates[best])
		candidates = append(candidates[:best], candidates[best+1:]...)
	}
	return routes
}

func pathNode(g *sim.Graph, source sim.NetworkNodeId, path []sim.EgressQueueId, hop int) sim.NetworkNodeId {
	n := source
	for i := 0; i < hop; i++ {
		n = g.Queue(path[i]).Dest
	}
	return n
}

func pathSharesRoot(r, root []sim.EgressQueueId) bool {
	if len(r) < len(root) {
		return false
	}
	for i, q := range root {
		if r[i] != q {
			return false
		}
	}
	return true
}
