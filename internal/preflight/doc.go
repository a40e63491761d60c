// Package preflight provides readiness checks for the collection root, the
// directories mmove writes to, and the ledger backend.
//
// These checks run in two contexts:
//   - The pipeline runner calls CheckCollectionRoot before taking the run
//     lock. A rejected root is a RootError, which the command maps to exit
//     status 2.
//   - The CLI "mmove status" command uses RunAll to display readiness.
package preflight
