// Package resolver assigns a release year to every pending ledger item.
//
// Files are resolved from their tags: a structured year field wins, otherwise
// the first timestamp-like field is parsed. Folders take the latest year among
// their immediate child files; nested folders are not scanned. Items whose
// path has vanished are marked errored, and items without a usable year are
// marked unknown. Each outcome is written to the ledger as soon as it is known
// so an interrupted run resumes where it stopped.
package resolver
