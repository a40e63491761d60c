// Command mmove reorganizes a music collection into "<genre>-<year>" folders
// based on the release year found in each item's tags.
//
//	mmove run ~/Music --load-folders   walk, resolve, and move
//	mmove run ~/Music                  resolve and move items already recorded
//	mmove status ~/Music               readiness checks and ledger counts
//	mmove plan ~/Music                 what the next move pass would do
//
// Exit status is 0 on success, 2 when the collection root is missing or does
// not look like a music collection, and 1 for any other failure.
package main
