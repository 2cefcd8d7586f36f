// Package strategy implements column value generation.
//
// A Strategy produces a sequence of values for one column. Optional
// capabilities are expressed as small interfaces that callers probe with
// type assertions instead of inheritance:
//
//   - Stateful: carries state across GenerateChunk calls (series position,
//     random stream) and exposes it via CurrentState/SyncState.
//   - Seedable: draws from a seeded random source.
//   - Validatable: can re-check its parameters after construction.
//   - FrameBinder: reads other columns of the frame being populated
//     (concatenation, mapping, replacement).
//   - Enumerable: has a small finite value space, used by uniqueness
//     enforcement to fail fast and to fill shortfalls deterministically.
//
// Strategies are constructed by a Factory from a registry of Definitions.
// Names resolve case-insensitively through an alias table, and params are
// decoded into a typed ParamConfig before construction.
//
// # Generate vs GenerateChunk
//
// Generate restarts a strategy from its initial state and is used for
// single-pass generation. GenerateChunk continues from the current state, so
// for any chunking c1+c2+...+ck = N the concatenated chunk outputs equal a
// single Generate(N).
package strategy
