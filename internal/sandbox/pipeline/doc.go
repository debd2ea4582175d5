/*
Package pipeline runs lesson source through every sandbox stage and holds the
result behind a failure boundary.

# Stages

	normalize -> transform -> compile -> execute -> render

Each run builds a fresh goja runtime and capability set. Nothing survives from
one run to the next.

# Outcomes

A run ends in exactly one of:

  - Rendered: the entry component mounted; the outcome carries a snapshot of
    the host tree and its HTML, and the boundary keeps the live session so
    events can be dispatched to it.
  - Empty: the entry symbol is missing or not a function. This is not an
    error and carries no diagnostic.
  - Failed: some stage raised an error or panicked. Only the message is
    exposed; the failing stage is kept for logs and metrics.

# Boundary

Boundary is the state machine Idle -> Running -> {Rendered | Empty | Failed}.
Starting a run tears down the previous session first, running effect
cleanups whose errors are logged and otherwise ignored.
*/
package pipeline
