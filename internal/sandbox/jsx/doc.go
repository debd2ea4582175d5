// Package jsx rewrites JSX markup embedded in JavaScript into factory calls.
//
// The transformer is a single-pass scanner over the script. Plain JavaScript
// is copied through verbatim; strings, comments, template literals and
// regular expression literals are recognised so that a `<` inside them is
// never mistaken for markup. A `<` in expression position starts an element,
// which is parsed recursively and replaced by a call of the form:
//
//	React.createElement(type, props, ...children)
//
// Lowercase and hyphenated tag names become string types, capitalised and
// dotted names stay as expression references, `<>...</>` becomes a
// React.Fragment element, and spread attributes are merged with
// Object.assign. Text children follow the usual JSX whitespace rules.
//
// Malformed input yields a *TransformError with the 1-based line and column
// of the problem and a caret-annotated source snippet. Generated calls keep
// the newline count of the markup they replace, so line numbers reported by
// later stages still point at the learner's source.
//
// Example Usage:
//
//	out, err := jsx.Transform(`const a = <p className="x">hi</p>;`)
//	// out == `const a = React.createElement("p", {className: "x"}, "hi");`
package jsx
