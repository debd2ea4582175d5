package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML serializes the node. A fragment renders its children back to back.
func (n *Node) HTML() string {
	var buf bytes.Buffer
	if n.Type == FragmentNode {
		for _, c := range n.Children {
			_ = html.Render(&buf, c.htmlNode())
		}
		return buf.String()
	}
	_ = html.Render(&buf, n.htmlNode())
	return buf.String()
}

// htmlNode converts the subtree to an x/net/html tree
func (n *Node) htmlNode() *html.Node {
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case FragmentNode:
		// nested fragments render their children in place
		doc := &html.Node{Type: html.DocumentNode}
		for _, c := range n.Children {
			doc.AppendChild(c.htmlNode())
		}
		return doc
	}

	el := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	for _, a := range n.Attrs {
		el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	if n.Interactive && n.ID != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: HandleAttr, Val: n.ID})
	}

	if n.InnerHTML != "" {
		nodes, err := html.ParseFragment(strings.NewReader(n.InnerHTML), el)
		if err != nil {
			el.AppendChild(&html.Node{Type: html.TextNode, Data: n.InnerHTML})
			return el
		}
		for _, c := range nodes {
			el.AppendChild(c)
		}
		return el
	}

	for _, c := range n.Children {
		el.AppendChild(c.htmlNode())
	}
	return el
}
