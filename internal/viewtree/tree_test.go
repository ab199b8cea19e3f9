package viewtree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treesJSON = `[
  {"name": "Metabolism", "index": [1], "children": [
    {"name": "Glycolysis", "index": [1, 1]},
    {"name": "Lipids", "index": [1, 2], "children": [
      {"name": "Fatty acids", "index": [1, 2, 1]}
    ]}
  ]},
  {"name": "Signalling", "index": []}
]`

func loadTrees(t *testing.T) []*Node {
	trees, err := ReadTrees(strings.NewReader(treesJSON))
	require.NoError(t, err)
	return trees
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Fatty acids [1.2.1]", (&Node{Name: "Fatty acids", Index: []int{1, 2, 1}}).Label())
	assert.Equal(t, "Signalling", (&Node{Name: "Signalling"}).Label())
}

func TestWalk(t *testing.T) {
	var visited []string
	Walk(loadTrees(t), func(n *Node, depth int) bool {
		visited = append(visited, strings.Repeat("-", depth)+n.Name)
		return true
	})
	assert.Equal(t, []string{
		"Metabolism", "-Glycolysis", "-Lipids", "--Fatty acids", "Signalling",
	}, visited)
}

func TestWalkSkipsChildren(t *testing.T) {
	var visited []string
	Walk(loadTrees(t), func(n *Node, depth int) bool {
		visited = append(visited, n.Name)
		return n.Name != "Metabolism"
	})
	assert.Equal(t, []string{"Metabolism", "Signalling"}, visited)
}

func TestFind(t *testing.T) {
	trees := loadTrees(t)

	n, err := Find(trees, []int{1, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, "Fatty acids", n.Name)

	n, err = Find(trees, []int{})
	require.NoError(t, err)
	assert.Equal(t, "Signalling", n.Name)

	_, err = Find(trees, []int{3})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseIndex(t *testing.T) {
	idx, err := ParseIndex("1.2.1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1}, idx)

	idx, err = ParseIndex("")
	require.NoError(t, err)
	assert.Empty(t, idx)

	_, err = ParseIndex("1..2")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, loadTrees(t))

	out := buf.String()
	for _, want := range []string{"Metabolism [1]", "Glycolysis [1.1]", "Fatty acids [1.2.1]", "Signalling"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Lipids"), strings.Index(out, "Fatty acids"))
}
