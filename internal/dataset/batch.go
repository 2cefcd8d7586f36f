package dataset

import (
	"strconv"
	"time"
)

// BatchInfo locates a flushed batch within a chunked run.
type BatchInfo struct {
	BatchIndex   int       `json:"batch_index" msgpack:"batch_index"`
	ChunkIndex   int       `json:"chunk_index" msgpack:"chunk_index"`
	BatchSize    int       `json:"batch_size" msgpack:"batch_size"`
	TotalBatches int       `json:"total_batches" msgpack:"total_batches"`
	Timestamp    time.Time `json:"timestamp" msgpack:"timestamp"`
}

// Placeholders returns the values substituted into output path templates.
func (b BatchInfo) Placeholders() map[string]string {
	return map[string]string{
		"{batch_index}": strconv.Itoa(b.BatchIndex),
		"{timestamp}":   b.Timestamp.UTC().Format("20060102T150405Z"),
	}
}
