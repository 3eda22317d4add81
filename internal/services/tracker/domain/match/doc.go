// Package match models the match aggregate.
//
// A match tracks who is on the field and for how long, the scoreboard, and
// per-player statistics across a Setup -> Live -> Completed lifecycle. Every
// mutation is a pure transition: Apply takes the current value and an action
// and returns a Decision holding the next value. Transitions never fail with
// an error; an action that cannot be applied (unknown player, wrong status,
// invalid input) yields a rejected Decision carrying the unchanged state.
//
// The package holds:
//   - the aggregate and player timeline types,
//   - the action set and the transition table in Apply,
//   - the stint deriver that turns on/off events into intervals,
//   - and derived match and season summaries.
package match
