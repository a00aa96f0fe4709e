// Package history records completed poll snapshots in SQLite.
//
// Every poll cycle produces one row per thing: the property values as
// a JSON document plus a UTC timestamp. The table is small and
// append-only; Prune enforces retention.
package history
