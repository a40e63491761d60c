// Package organizer relocates resolved ledger items into "<genre>-<year>"
// folders under the collection root.
//
// Materialize creates the destination folders for every (year, genre) group
// the ledger says will receive items. Move then drains movable items deepest
// first so a directory is only relocated after its subdirectories have left.
// A directory that still holds a subdirectory is reported as blocked and kept
// for a later run. Name collisions never overwrite: directories take a random
// suffix, files are renamed in place before they move.
package organizer
