// Package season owns the squad, the collection of matches, and the
// selection of the match currently being tracked.
//
// Like the match package, every transition is a pure decision: Decide never
// mutates its input and never returns an error. Match actions reach the
// current match through ApplyToCurrent so the season's copy of that match is
// always the one that was last written.
package season
