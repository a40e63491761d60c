// Package pipeline drives one mmove run against a collection root.
//
// A run validates the root, takes a per-root file lock so two runs never
// touch the same tree, assigns a run id that is attached to every log line,
// and then executes the phases in order: walk (only when loading folders),
// resolve, materialize, move. Each phase commits its ledger updates item by
// item, so an interrupted run leaves a consistent ledger that the next run
// picks up.
package pipeline
