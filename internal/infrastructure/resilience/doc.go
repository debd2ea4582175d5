/*
Package resilience provides a circuit breaker for graceful degradation.

# Overview

The preferences store sits behind a breaker: when the backing database keeps
failing, writes stop being attempted for a while and the workspace carries on
with its in-memory state.

# Usage

	breaker := resilience.New("kv", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, kv.ErrNotFound)
		},
	})

	err := breaker.Execute(func() error {
		return store.Set(ctx, key, value)
	})

	value, err := resilience.Call(breaker, func() (string, error) {
		return store.Get(ctx, key)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
