// Package runtime compiles transformed lesson scripts into goja functions and
// invokes them.
//
// Every pipeline run gets a fresh Runtime. The global scope keeps the
// ECMAScript built-ins and nothing else: host-ish names such as require and
// process are defined as undefined. Compiled code is wrapped as
//
//	(function(React, useState, ..., useDeferredValue) { <body> <trailer> })
//
// so the only bindings it can reach beyond the built-ins are the capability
// parameters. The trailer resolves the entry symbol of the topic and returns
// either an element for it or null.
//
// Features:
//   - Capability parameter list fixed by CapabilityNames
//   - Topic-specific entry symbol trailer
//   - Optional wall-clock timeout through goja's Interrupt
//   - Optional console capture
//
// Example Usage:
//
//	rt := runtime.New(runtime.DefaultConfig())
//	unit, err := rt.Compile(body, topic.UseState)
//	root, err := rt.Execute(ctx, unit, bindings)
package runtime
