// Package viewtree holds the hierarchies (e.g. pathway trees) the user can pick data
// nodes from.
package viewtree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
)

var ErrNotFound = errors.New("tree node not found")

type Node struct {
	Name     string  `json:"name"`
	Index    []int   `json:"index"`
	Children []*Node `json:"children,omitempty"`
}

// IndexString joins the index path with dots, e.g. "1.4.2".
func (n *Node) IndexString() string {
	parts := make([]string, len(n.Index))
	for i, idx := range n.Index {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// Label is the name followed by the bracketed index path, if there is one.
func (n *Node) Label() string {
	if len(n.Index) == 0 {
		return n.Name
	}
	return fmt.Sprintf("%s [%s]", n.Name, n.IndexString())
}

func ReadTrees(r io.Reader) ([]*Node, error) {
	var trees []*Node
	if err := json.NewDecoder(r).Decode(&trees); err != nil {
		return nil, fmt.Errorf("decoding trees: %w", err)
	}
	return trees, nil
}

// Walk visits every node depth first, parents before children. Returning false from
// fn skips the node's children.
func Walk(trees []*Node, fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if n == nil || !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}

	for _, t := range trees {
		visit(t, 0)
	}
}

func equalIndex(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Find returns the first node whose index path equals index.
func Find(trees []*Node, index []int) (*Node, error) {
	var found *Node
	Walk(trees, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if equalIndex(n.Index, index) {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, index)
	}
	return found, nil
}

// ParseIndex parses a dotted index path such as "1.4.2".
func ParseIndex(s string) ([]int, error) {
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ".")
	index := make([]int, len(parts))
	for i, p := range parts {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", s, err)
		}
		index[i] = idx
	}
	return index, nil
}

// Render writes the hierarchy as an indented list.
func Render(w io.Writer, trees []*Node) {
	l := list.NewWriter()
	l.SetOutputMirror(w)
	l.SetStyle(list.StyleConnectedRounded)

	depth := 0
	Walk(trees, func(n *Node, d int) bool {
		for ; depth < d; depth++ {
			l.Indent()
		}
		for ; depth > d; depth-- {
			l.UnIndent()
		}
		l.AppendItem(n.Label())
		return true
	})

	l.Render()
}
