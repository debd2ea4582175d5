// Package kv is the key-value port used to remember workspace preferences
// such as the active topic. Adapters: Memory and SQLite (modernc.org/sqlite,
// no cgo).
package kv
