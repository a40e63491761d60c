// Package stage defines the contract between the pipeline runner and the
// phases it drives: walk, resolve, materialize, and move.
package stage
