// Package harness runs generation scenarios as executable contract tests.
//
// A scenario names a config, optional run overrides and a list of
// assertions over the generated dataset. The harness generates the
// dataset in memory, loads it into an in-memory SQLite store and checks
// every assertion.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config: ../configs/users.yaml
//	seed: 7
//	batch: { batch_size: 4, chunk_size: 2 }
//	expect:
//	  rows: 10
//	  columns: [id, age]
//	  batches: 3
//	assertions:
//	  - type: column_unique
//	    column: id
//	  - type: column_range
//	    column: age
//	    min: 18
//	    max: 65
//	  - type: final_state
//	    where: { id: 3 }
//	    expect: { grade: "a" }
//
// The config path is resolved relative to the scenario file. A scenario
// that expects a failure sets expect.error to a gerrors code instead.
//
// # Assertion Types
//
//   - column_unique: no two non-null cells of a column are equal
//   - column_values: every cell of a column is one of values
//   - column_range: every non-null numeric cell lies in [min, max]
//   - masked_values: rows selected by mask hold one of values in column
//   - final_state: a SQL lookup on the stored dataset matches expect
//
// # Deterministic Testing
//
// Every scenario runs with a fixed seed (1 unless set) and a
// testutil.DeterministicClock, so golden snapshots are byte-identical
// across runs.
package harness
