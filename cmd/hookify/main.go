// Command hookify renders and watches hook lessons from the terminal and
// can serve the editor backend.
//
// Usage:
//
//	hookify topics
//	hookify render useState --script counter.jsx --format tree
//	hookify watch useEffect --script effect.jsx --style effect.css
//	hookify serve --port 8000
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
