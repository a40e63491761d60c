// Package services defines shared utilities consumed by the pipeline phases
// and the command layer.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, phase names, collection roots, and
//     ledger item IDs for logging.
//   - Structured error markers plus the Wrap helper, and the mapping from
//     run failures to process exit statuses.
//
// Use these helpers when wiring new phase logic so error handling and
// observability stay uniform across the pipeline.
package services
