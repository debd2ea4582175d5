// Package topic defines the fixed set of teaching topics the sandbox supports.
//
// Each topic selects one stored script/stylesheet pair and decides which
// entry symbol the execution host looks up:
//   - useContext: the "App" wrapper component
//   - every other topic: the "Example" component
//
// Example Usage:
//
//	t, err := topic.Parse("useState")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(t.EntrySymbol()) // Example
package topic
