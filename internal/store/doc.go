// Package store persists generated datasets to SQLite files.
//
// Each generated frame becomes rows of a table named after the dataset.
// Column affinities follow the frame's value kinds (int64 → INTEGER,
// float64 → REAL, bool → INTEGER, everything else → TEXT). A bookkeeping
// table records every batch appended to a dataset table so repeated batch
// writes into one file can be audited.
//
// # Database Configuration
//
//   - WAL mode: readers see committed batches while a run appends
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// All inserts for one frame run inside a single transaction.
package store
