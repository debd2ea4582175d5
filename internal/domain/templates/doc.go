// Package templates holds the immutable table of default lesson content.
//
// Every topic maps to a template pair: the script a learner starts from and
// its stylesheet. The built-in table is embedded in the binary; an optional
// YAML or TOML file may replace individual entries at load time. After load
// a Registry is never mutated and is safe to share without locking.
//
// Example Usage:
//
//	reg, err := templates.Load(os.Getenv("TEMPLATES_PATH"))
//	tpl, _ := reg.Get(topic.UseState)
package templates
