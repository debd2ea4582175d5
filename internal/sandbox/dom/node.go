package dom

import (
	"fmt"
	"strings"
)

// NodeType distinguishes node kinds
type NodeType int

const (
	FragmentNode NodeType = iota
	ElementNode
	TextNode
)

// String returns the node type name
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return "fragment"
	}
}

// MarshalText encodes the type by name
func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name
func (t *NodeType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "element":
		*t = ElementNode
	case "text":
		*t = TextNode
	case "fragment":
		*t = FragmentNode
	default:
		return fmt.Errorf("unknown node type %q", b)
	}
	return nil
}

// HandleAttr is the attribute carrying the handle of interactive nodes
const HandleAttr = "data-hk"

// Attr is one rendered attribute
type Attr struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// Node is an element, a text run, or the fragment at the root of a tree
type Node struct {
	Type        NodeType `json:"type"`
	Tag         string   `json:"tag,omitempty"`
	Text        string   `json:"text,omitempty"`
	ID          string   `json:"id,omitempty"`
	Attrs       []Attr   `json:"attrs,omitempty"`
	InnerHTML   string   `json:"innerHTML,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Focused     bool     `json:"focused,omitempty"`
	Children    []*Node  `json:"children,omitempty"`
	Parent      *Node    `json:"-"`
}

// NewFragment creates an empty root
func NewFragment() *Node {
	return &Node{Type: FragmentNode}
}

// NewElement creates an element with the given handle
func NewElement(tag, id string) *Node {
	return &Node{Type: ElementNode, Tag: tag, ID: id}
}

// NewText creates a text node
func NewText(text string) *Node {
	return &Node{Type: TextNode, Text: text}
}

// AppendChild adds child as the last child of n
func (n *Node) AppendChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Attr returns the value of an attribute
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, keeping its position if already present
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present
func (n *Node) RemoveAttr(key string) {
	attrs := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attrs = attrs
}

// Classes returns the space separated entries of the class attribute
func (n *Node) Classes() []string {
	class, _ := n.Attr("class")
	return strings.Fields(class)
}

// TextContent concatenates all descendant text
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Type == TextNode {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the descendant with the given handle
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Type == ElementNode && c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Query finds elements by a simple selector: #id matches the id attribute,
// .class matches a class entry, anything else matches the tag name
func (n *Node) Query(selector string) []*Node {
	var match func(*Node) bool
	switch {
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		match = func(c *Node) bool {
			v, ok := c.Attr("id")
			return ok && v == id
		}
	case strings.HasPrefix(selector, "."):
		class := strings.TrimPrefix(selector, ".")
		match = func(c *Node) bool {
			for _, cl := range c.Classes() {
				if cl == class {
					return true
				}
			}
			return false
		}
	default:
		match = func(c *Node) bool {
			return strings.EqualFold(c.Tag, selector)
		}
	}

	var result []*Node
	n.Walk(func(c *Node) bool {
		if c.Type == ElementNode && match(c) {
			result = append(result, c)
		}
		return true
	})
	return result
}

// Clone returns a deep copy of the subtree, detached from any parent
func (n *Node) Clone() *Node {
	c := *n
	c.Parent = nil
	c.Attrs = append([]Attr(nil), n.Attrs...)
	c.Children = nil
	for _, child := range n.Children {
		c.AppendChild(child.Clone())
	}
	return &c
}
