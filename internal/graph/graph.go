// Package graph turns a resolved branch history into a directed graph and
// writes it as a Graphviz DOT file.
//
// Nodes are commits, labeled with their identifier and the ref they belong
// to. Edges point from parent to child: base -> oldest branch commit -> ...
// -> newest branch commit -> merge.
package graph

import (
	"io"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/lineage"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/output"
	"github.com/emicklei/dot"
)

// DefaultFile is where the graph is written unless configured otherwise.
const DefaultFile = "graph.dot"

// Node is one commit in the graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Edge points from an older commit to a newer one.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the fully built graph. Node and edge order is deterministic for a
// given input.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// New builds the graph for a merge commit, the trunk base it was merged onto
// and the branch chain (root-to-tip). Merge and base are labeled with trunk,
// chain entries with branch.
func New(mergeSHA, baseSHA string, chain []lineage.Commit, trunk, branch string) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0, len(chain)+2),
		Edges: make([]Edge, 0, len(chain)+1),
	}

	g.Nodes = append(g.Nodes, Node{ID: baseSHA, Label: label(baseSHA, trunk)})
	prev := baseSHA
	for _, c := range chain {
		g.Nodes = append(g.Nodes, Node{ID: c.SHA, Label: label(c.SHA, branch)})
		g.Edges = append(g.Edges, Edge{From: prev, To: c.SHA})
		prev = c.SHA
	}
	g.Nodes = append(g.Nodes, Node{ID: mergeSHA, Label: label(mergeSHA, trunk)})
	g.Edges = append(g.Edges, Edge{From: prev, To: mergeSHA})

	return g
}

// Build is New applied to a resolver result.
func Build(res *lineage.Result) *Graph {
	return New(res.Merge.SHA, res.Base, res.Chain, res.Trunk, res.Branch)
}

func label(sha, ref string) string {
	return sha + "\n" + ref
}

// DOT renders g as a Graphviz digraph. Statement names are generated by the
// renderer; each node carries its commit identifier in the id attribute.
func (g *Graph) DOT() string {
	d := dot.NewGraph(dot.Directed)
	nodes := make(map[string]dot.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = d.Node(n.ID).Label(n.Label).Attr("id", n.ID)
	}
	for _, e := range g.Edges {
		d.Edge(nodes[e.From], nodes[e.To])
	}
	return d.String()
}

// WriteFile renders g and writes it to path in a single atomic write.
func WriteFile(path string, g *Graph) error {
	return output.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, g.DOT())
		return err
	})
}
