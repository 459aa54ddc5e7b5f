package ishikawa

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

var categoryColors = map[Category]string{
	Methods:     "#FF9999",
	Machines:    "#99FF99",
	People:      "#9999FF",
	Materials:   "#FFFF99",
	Environment: "#FF99FF",
}

type attributes []encoding.Attribute

func (a attributes) Attributes() []encoding.Attribute { return a }

type node struct {
	id    int64
	dotID string
	attributes
}

func (n node) ID() int64     { return n.id }
func (n node) DOTID() string { return n.dotID }

type edge struct {
	from, to graph.Node
	attributes
}

func (e edge) From() graph.Node { return e.from }
func (e edge) To() graph.Node   { return e.to }

func (e edge) ReversedEdge() graph.Edge {
	return edge{from: e.to, to: e.from, attributes: e.attributes}
}

// fishbone carries the graph-level layout attributes.
type fishbone struct {
	*simple.DirectedGraph
}

func (fishbone) DOTAttributers() (g, n, e encoding.Attributer) {
	return attributes{
		{Key: "rankdir", Value: "LR"},
		{Key: "splines", Value: "ortho"},
		{Key: "nodesep", Value: "0.5"},
		{Key: "ranksep", Value: "2"},
		{Key: "fontname", Value: "Arial"},
		{Key: "bgcolor", Value: "white"},
	}, attributes{}, attributes{}
}

// DOT renders the diagram as a Graphviz digraph. Categories without causes
// are omitted. Edges point from why to cause, cause to category and
// category to effect.
func (d *Diagram) DOT() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	g := fishbone{simple.NewDirectedGraph()}
	var nextID int64
	add := func(dotID string, attrs attributes) node {
		n := node{id: nextID, dotID: dotID, attributes: attrs}
		nextID++
		g.AddNode(n)
		return n
	}
	link := func(from, to node, attrs attributes) {
		g.SetEdge(edge{from: from, to: to, attributes: attrs})
	}

	effect := add("effect", attributes{
		{Key: "label", Value: d.Effect},
		{Key: "shape", Value: "box"},
		{Key: "style", Value: "filled"},
		{Key: "fillcolor", Value: "#E6E6E6"},
		{Key: "fontname", Value: "Arial Bold"},
		{Key: "fontsize", Value: "14"},
	})

	for _, category := range Categories {
		causes := d.Causes[category]
		if len(causes) == 0 {
			continue
		}
		color := categoryColors[category]
		cat := add("cat_"+string(category), attributes{
			{Key: "label", Value: string(category)},
			{Key: "shape", Value: "box"},
			{Key: "style", Value: "filled"},
			{Key: "fillcolor", Value: color},
			{Key: "fontname", Value: "Arial"},
			{Key: "fontsize", Value: "12"},
		})
		link(cat, effect, attributes{{Key: "penwidth", Value: "2.0"}, {Key: "color", Value: color}})

		for i, c := range causes {
			causeID := fmt.Sprintf("%s_cause%d", category, i)
			cn := add(causeID, attributes{
				{Key: "label", Value: c.Text},
				{Key: "shape", Value: "oval"},
				{Key: "style", Value: "filled"},
				{Key: "fillcolor", Value: color + "80"},
				{Key: "fontname", Value: "Arial"},
				{Key: "fontsize", Value: "10"},
			})
			link(cn, cat, attributes{{Key: "penwidth", Value: "1.5"}, {Key: "color", Value: color + "80"}})

			for j, why := range c.Whys {
				wn := add(fmt.Sprintf("%s_why%d", causeID, j), attributes{
					{Key: "label", Value: why},
					{Key: "shape", Value: "oval"},
					{Key: "style", Value: "filled"},
					{Key: "fillcolor", Value: color + "40"},
					{Key: "fontname", Value: "Arial"},
					{Key: "fontsize", Value: "9"},
				})
				link(wn, cn, attributes{{Key: "penwidth", Value: "1.0"}, {Key: "color", Value: color + "60"}})
			}
		}
	}

	return dot.Marshal(g, "ishikawa", "", "  ")
}
