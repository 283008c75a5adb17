// Package audit records integrity checkpoints of service queues and ships
// them to logs, Redis or Kafka.
package audit

import (
	"context"
	"time"
)

// Op is the mutation that produced a record.
type Op string

const (
	OpEnqueue Op = "enqueue"
	OpDequeue Op = "dequeue"
	OpClear   Op = "clear"

	// OpCheckpoint records the integrity hash of a tracked queue.
	OpCheckpoint Op = "checkpoint"
)

// Record is the state of a queue right after a mutation or a checkpoint.
// Mutation records carry the size only; Hash is set on checkpoint records.
// ID is assigned by the Trail and orders records of one process.
type Record struct {
	ID    int64     `json:"id,omitempty"`
	Queue string    `json:"queue"`
	Op    Op        `json:"op"`
	Size  int       `json:"size"`
	Hash  string    `json:"hash,omitempty"`
	At    time.Time `json:"at"`
}

// CheckpointFunc reports the current integrity hash and size of a queue,
// both taken from one view of it.
type CheckpointFunc func() (hash string, size int)

// Recorder accepts audit records from a queue.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// RecorderFunc adapts a plain function to Recorder.
type RecorderFunc func(ctx context.Context, rec Record) error

func (f RecorderFunc) Record(ctx context.Context, rec Record) error { return f(ctx, rec) }

// Sink persists batches of records.
type Sink interface {
	Write(ctx context.Context, batch []Record) error
}

// Sync returns a Recorder that writes every record straight to sink.
func Sync(sink Sink) Recorder {
	return RecorderFunc(func(ctx context.Context, rec Record) error {
		return sink.Write(ctx, []Record{rec})
	})
}
