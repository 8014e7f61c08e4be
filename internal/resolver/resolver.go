// Package resolver orders stocks by their initial-value references.
//
// The input is a reference graph over stock names: an inward-edges map
// (who points at me) and an outward-edges map (who do I point at), both
// derived from initial-value formulas only. Resolve either detects an
// illegal reference cycle or produces a safe initialization order.
package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Circular reference error code (E131).
const ErrCodeCircularReferences = "E131"

// CycleError reports a reference cycle among stock initial values. Edges
// holds the residual outward edges of the unresolved nodes: every node
// appearing as a key participates in or depends on a cycle.
type CycleError struct {
	Code  string
	Edges map[string][]string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	nodes := make([]string, 0, len(e.Edges))
	for n := range e.Edges {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	var parts []string
	for _, n := range nodes {
		targets := append([]string(nil), e.Edges[n]...)
		sort.Strings(targets)
		parts = append(parts, fmt.Sprintf("%s -> %s", n, strings.Join(targets, ", ")))
	}
	return fmt.Sprintf("[%s] circular references: %s", e.Code, strings.Join(parts, "; "))
}

// IsCycleError returns true if the error is a circular-reference error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// Resolve computes a safe initialization order for the given reference
// graph, or fails with a CycleError naming the residual edges.
//
// The algorithm is iterative peeling, equivalent to Kahn's: repeatedly
// scan all nodes; any node with zero remaining inward edges but nonzero
// outward edges has its outward edges severed and is appended to the
// peel order; repeat until a full scan changes nothing. If any node
// still holds outward edges a cycle exists among the unresolved nodes.
// Otherwise the peel order reversed is the safe initialization order: a
// stock later in the order may reference any stock earlier in it.
//
// Self-loops never reach zero inward count and are correctly flagged as
// cycles. Nodes with no outward edges are resolved trivially and do not
// appear in the order at all; the engine initializes them first.
//
// Resolve operates on an owned copy of the edge maps and never mutates
// the caller's graph. Scans walk nodes in sorted name order so the
// produced order is deterministic for a given graph, though only
// topological validity is promised.
func Resolve(inward, outward map[string][]string) ([]string, error) {
	in := copyEdges(inward)
	out := copyEdges(outward)

	nodes := make(map[string]bool)
	for n := range in {
		nodes[n] = true
	}
	for n := range out {
		nodes[n] = true
	}
	sorted := make([]string, 0, len(nodes))
	for n := range nodes {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var order []string
	resolved := make(map[string]bool, len(nodes))
	for changed := true; changed; {
		changed = false
		for _, n := range sorted {
			if resolved[n] || len(in[n]) > 0 || len(out[n]) == 0 {
				continue
			}
			for target := range out[n] {
				delete(in[target], n)
			}
			out[n] = nil
			resolved[n] = true
			order = append(order, n)
			changed = true
		}
	}

	residual := make(map[string][]string)
	for _, n := range sorted {
		if len(out[n]) == 0 {
			continue
		}
		targets := make([]string, 0, len(out[n]))
		for t := range out[n] {
			targets = append(targets, t)
		}
		sort.Strings(targets)
		residual[n] = targets
	}
	if len(residual) > 0 {
		return nil, &CycleError{Code: ErrCodeCircularReferences, Edges: residual}
	}

	// Peeling exhausts inward edges source-first; reverse for the
	// dependency-first initialization order.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// copyEdges converts an adjacency list into an owned set-valued map.
func copyEdges(edges map[string][]string) map[string]map[string]bool {
	owned := make(map[string]map[string]bool, len(edges))
	for n, targets := range edges {
		set := make(map[string]bool, len(targets))
		for _, t := range targets {
			set[t] = true
		}
		owned[n] = set
	}
	return owned
}
