// Package processor drives strategies over a frame.
//
// Normal generates every row in one pass. Chunked generates bounded chunks,
// buffers them and flushes exactly batch_size rows per write, carrying each
// strategy's state from one chunk to the next. Both apply column specs in
// configuration order, so later specs may mask on or read columns produced
// by earlier ones.
//
// Masks and uniqueness in chunked runs are scoped to the current chunk.
// Neither processor is safe for concurrent use; each run owns its strategy
// instances, state map and frame.
package processor
