/*
Package workspace owns the learner's edits: a script and a stylesheet per
topic, seeded from the template registry, plus the active topic.

Every change goes through Update or SetActive. Observers are called
synchronously after the store's lock is released, so an observer may read
the store, and the call that made the change returns only after every
observer has finished.

The active topic can be remembered across restarts through Preferences,
which sits on the kv port behind a circuit breaker. LoadDir imports a
directory of <topic>.js / <topic>.css files through the same entry point.
*/
package workspace
