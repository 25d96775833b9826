package ast

import "errors"

// SkipChildren can be returned by a WalkFunc to skip the children of the
// current node without aborting the walk.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node visited by Walk.
type WalkFunc func(Node) error

// Walk traverses the tree rooted at n in depth-first pre-order and calls fn
// for each node. It returns the first error returned by fn, other than
// SkipChildren.
func Walk(n Node, fn WalkFunc) error {
	if n == nil {
		return nil
	}

	if err := fn(n); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}

	for _, child := range n.Children() {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}

	return nil
}

// Depth returns the height of the tree rooted at n. A single leaf has depth 1.
func Depth(n Node) int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, child := range n.Children() {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	total := 0
	_ = Walk(n, func(Node) error {
		total++
		return nil
	})
	return total
}
