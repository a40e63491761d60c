// Package walker discovers work under a collection root and records it in the
// ledger.
//
// Each immediate child directory named "<genre>-<year>" is a top folder. The
// walker visits it depth first, deleting junk files, removing directories that
// end up empty, and inserting one ledger item per surviving directory plus one
// per loose song directly inside the top folder. Re-walking a tree inserts
// nothing new because the ledger ignores known paths.
package walker
