// Package simulation provides the runtime for branching scenario
// simulations and session result tracking. The scenario engine is a pure
// state machine: choices produce a new state rather than mutating the old
// one, so a single engine can serve many concurrent sessions.
package simulation
