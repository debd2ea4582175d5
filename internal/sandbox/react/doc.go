// Package react implements the capability set handed to compiled lesson
// scripts and the renderer that materializes the tree they return.
//
// A Renderer is created for exactly one pipeline run. It owns the React
// object, the hook functions, and the fiber tree that keeps hook state
// between renders of that run. Nothing survives Close: the next run builds a
// new Renderer from scratch.
//
// Rendering is synchronous. A state update marks the renderer dirty; the
// whole tree is then re-rendered from the root, fibers are matched by
// position, key and type so hook state follows its component, and effects
// run after each commit with children before parents.
//
// Limits:
//   - 25 render passes for a component that updates itself while rendering
//   - 50 commits for updates triggered from effects
//   - MaxDepth nested elements
//
// Example Usage:
//
//	r := react.New(vm, react.DefaultOptions())
//	root, _ := rt.Execute(ctx, unit, r.Bindings())
//	if err := r.Mount(root); err != nil { ... }
//	html := r.Tree().HTML()
//	defer r.Close()
package react
