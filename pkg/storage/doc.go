// Package storage persists acquired rows as CSV tables.
//
// The storage package handles:
//   - Creating and managing the output directory
//   - Merging newly fetched rows with rows already on disk
//   - De-duplicating rows by a stable per-entity key
//   - Deterministic, filename-safe table naming per target
//
// The Manager type is the primary interface. Every write goes through
// MergeWrite, which reads the existing table, concatenates the on-disk rows
// before the incoming ones, drops duplicate keys keeping the first occurrence
// (so rows already persisted win over refetched copies), and atomically
// rewrites the file using a temporary file and rename. Repeated runs against
// the same target therefore grow one table instead of scattering partial
// files, and a run that fetched nothing new leaves the table intact.
//
// Usage:
//
//	manager, err := storage.NewManager("./data")
//	if err != nil {
//	    log.Fatal(err.Error())
//	}
//
//	rows := []storage.Row{{"id": "7123", "desc": "first clip"}}
//	name := storage.UserVideosFile("somecreator")
//	written, err := manager.MergeWrite(name, rows, []string{"id", "desc"}, "id")
//	if err != nil {
//	    log.Error("persist failed: " + err.Error())
//	}
package storage
