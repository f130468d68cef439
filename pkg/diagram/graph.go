package diagram

import (
	"bytes"
	"fmt"
)

// Attr is one graph/node/edge default attribute. Attributes are kept as an
// ordered list so DOT output is deterministic.
type Attr struct {
	Key   string
	Value string
}

// Node is one diagram node with an HTML-like table label.
type Node struct {
	Name      string
	Label     *Table
	Shape     string
	Style     string
	FillColor string
	Margin    string
}

// Endpoint addresses one side of an edge: an entity (connector or cable
// name), an optional port anchoring the edge to a table cell, and an
// optional compass direction.
type Endpoint struct {
	Name    string
	Port    string
	Compass string
}

// String renders the endpoint in DOT "entity:port:compass" form.
func (e Endpoint) String() string {
	s := fmt.Sprintf("%q", e.Name)
	if e.Port != "" {
		s += fmt.Sprintf(":%q", e.Port)
	}
	if e.Compass != "" {
		s += ":" + e.Compass
	}
	return s
}

// Edge is one diagram edge. Color holds a Graphviz color list
// ("#000000:#ff0000:#000000") drawing one stripe per entry. Dir is empty
// for plain wires and forward/back/both for mate arrows.
type Edge struct {
	From  Endpoint
	To    Endpoint
	Color string
	Style string
	Dir   string
}

// Graph is the abstract diagram handed to the external renderer: default
// attributes plus node and edge lists in emission order.
type Graph struct {
	Comments   []string
	GraphAttrs []Attr
	NodeAttrs  []Attr
	EdgeAttrs  []Attr
	Nodes      []Node
	Edges      []Edge
}

// DOT serializes the graph to Graphviz DOT. The graph is undirected; mate
// direction is expressed through the per-edge dir attribute.
func (g *Graph) DOT() string {
	var buf bytes.Buffer
	buf.WriteString("graph {\n")
	for _, c := range g.Comments {
		fmt.Fprintf(&buf, "// %s\n", c)
	}
	writeAttrStmt(&buf, "graph", g.GraphAttrs)
	writeAttrStmt(&buf, "node", g.NodeAttrs)
	writeAttrStmt(&buf, "edge", g.EdgeAttrs)
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "%q [label=<\n%s\n>", n.Name, n.Label.HTML())
		if n.Shape != "" {
			fmt.Fprintf(&buf, " shape=%q", n.Shape)
		}
		if n.Style != "" {
			fmt.Fprintf(&buf, " style=%q", n.Style)
		}
		if n.FillColor != "" {
			fmt.Fprintf(&buf, " fillcolor=%q", n.FillColor)
		}
		if n.Margin != "" {
			fmt.Fprintf(&buf, " margin=%q", n.Margin)
		}
		buf.WriteString("];\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "%s -- %s [color=%q", e.From, e.To, e.Color)
		if e.Style != "" {
			fmt.Fprintf(&buf, " style=%q", e.Style)
		}
		if e.Dir != "" {
			fmt.Fprintf(&buf, " dir=%q", e.Dir)
		}
		buf.WriteString("];\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeAttrStmt(buf *bytes.Buffer, target string, attrs []Attr) {
	if len(attrs) == 0 {
		return
	}
	fmt.Fprintf(buf, "%s [", target)
	for i, a := range attrs {
		if i > 0 {
			buf.WriteString(" ")
		}
		fmt.Fprintf(buf, "%s=%q", a.Key, a.Value)
	}
	buf.WriteString("];\n")
}
