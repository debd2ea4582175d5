/*
Package preview keeps the rendered preview in step with the workspace.

Controller subscribes to the workspace store and re-runs the sandbox
pipeline on every edit of the active topic, script or stylesheet, and on
every topic switch. Edits of other topics are ignored. There is no
debouncing: every change is a full teardown and rebuild, finished before
the editing call returns.

Document is the style injector. It places the active stylesheet in a
<style> element ahead of the outcome panel.
*/
package preview
