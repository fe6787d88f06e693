// Package graph holds the in-memory network state behind the map: the
// append-only node and edge stores, the pending entry-form selection, and the
// mutation service that the HTTP surface drives.
package graph

import (
	"sync"

	"github.com/hydrowatch/watermap/internal/domain"
)

// NodeStore is the ordered, append-only collection of markers. It is the
// single source of truth for rendering; only the mutation service and the
// seed loader append to it. Adds never reject and never deduplicate.
type NodeStore struct {
	mu    sync.RWMutex
	nodes []domain.Node
}

// NewNodeStore creates an empty node store.
func NewNodeStore() *NodeStore {
	return &NodeStore{}
}

// Add appends a node. Insertion order is preserved.
func (s *NodeStore) Add(n domain.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, n)
}

// All returns an insertion-ordered snapshot. The returned slice is a copy and
// safe for the caller to hold across later mutations.
func (s *NodeStore) All() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Len returns the number of stored nodes.
func (s *NodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeStore is the ordered, append-only collection of polylines. Endpoints
// are not checked against the node store and degenerate edges are accepted;
// the seed data contains both.
type EdgeStore struct {
	mu    sync.RWMutex
	edges []domain.Edge
}

// NewEdgeStore creates an empty edge store.
func NewEdgeStore() *EdgeStore {
	return &EdgeStore{}
}

// Add appends an edge. Insertion order is preserved.
func (s *EdgeStore) Add(e domain.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = append(s.edges, e)
}

// All returns an insertion-ordered snapshot of the stored edges.
func (s *EdgeStore) All() []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Len returns the number of stored edges.
func (s *EdgeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}
