package routing

import (
	"container/heap"

	"github.com/micmap/transit-core/graph"
)

type queueItem struct {
	node graph.NodeID
	dist int
}

type priorityQueue []queueItem

func (q priorityQueue) Len() int            { return len(q) }
func (q priorityQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q priorityQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(x any)         { *q = append(*q, x.(queueItem)) }
func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// searchResult records the shortest distance and predecessor for every
// node the search settled.
type searchResult struct {
	dist map[graph.NodeID]int
	prev map[graph.NodeID]graph.NodeID
	src  map[graph.NodeID]bool
}

// reached reports whether the search settled the node.
func (r *searchResult) reached(n graph.NodeID) (int, bool) {
	d, ok := r.dist[n]
	return d, ok
}

// pathTo reconstructs the node sequence from a source to target.
func (r *searchResult) pathTo(target graph.NodeID) []graph.NodeID {
	if _, ok := r.dist[target]; !ok {
		return nil
	}
	var path []graph.NodeID
	for at := target; ; {
		path = append(path, at)
		if r.src[at] {
			break
		}
		at = r.prev[at]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// shortestPaths runs a multi-source Dijkstra that keeps going until
// every target is settled or the frontier empties. Reaching the first
// target is not enough: the ranking step needs the shortest path to
// each destination platform so structurally different routes survive.
func shortestPaths(adj graph.Adjacency, sources []graph.NodeID, targets map[graph.NodeID]bool) *searchResult {
	res := &searchResult{
		dist: make(map[graph.NodeID]int),
		prev: make(map[graph.NodeID]graph.NodeID),
		src:  make(map[graph.NodeID]bool),
	}
	settled := make(map[graph.NodeID]bool)
	best := make(map[graph.NodeID]int)

	pq := &priorityQueue{}
	for _, s := range sources {
		if _, ok := adj[s]; !ok {
			continue
		}
		res.src[s] = true
		best[s] = 0
		heap.Push(pq, queueItem{node: s, dist: 0})
	}

	remaining := len(targets)

	for pq.Len() > 0 && remaining > 0 {
		item := heap.Pop(pq).(queueItem)
		u := item.node
		if settled[u] {
			continue
		}
		settled[u] = true
		res.dist[u] = item.dist
		if targets[u] {
			remaining--
		}

		for _, e := range adj[u] {
			if settled[e.To] {
				continue
			}
			nd := item.dist + e.Time
			if cur, ok := best[e.To]; !ok || nd < cur {
				best[e.To] = nd
				res.prev[e.To] = u
				heap.Push(pq, queueItem{node: e.To, dist: nd})
			}
		}
	}
	return res
}
