// Package dom is the materialized output of a render: a small tree of
// element and text nodes that can be queried, walked and serialized.
//
// Nodes carry a stable handle (ID) assigned when they are first mounted.
// Nodes with event handlers are marked Interactive and serialize the handle
// as a data-hk attribute, which clients send back to dispatch events.
//
// Example Usage:
//
//	root := dom.NewFragment()
//	btn := dom.NewElement("button", "n1")
//	btn.AppendChild(dom.NewText("hi"))
//	root.AppendChild(btn)
//	root.HTML() // <button>hi</button>
package dom
