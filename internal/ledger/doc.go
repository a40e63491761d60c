// Package ledger persists the mmove work ledger: one row per file or folder
// discovered under a collection root, carrying its year resolution state and
// whether it has been relocated.
//
// The store runs on SQLite (modernc.org/sqlite, the default) or MySQL
// (github.com/go-sql-driver/mysql). Every query is scoped by collection root
// so several collections can share one database. Rows are never deleted by
// the pipeline; updates are guarded so that an item's year only leaves the
// pending state once and its moved flag only flips from false to true.
package ledger
