package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/huynhanx03/servicequeue/pkg/mq/batcher"
	"github.com/huynhanx03/servicequeue/pkg/timer"
	"github.com/huynhanx03/servicequeue/pkg/unique"
)

const defaultWriteTimeout = 2 * time.Second

// TrailConfig configures a Trail.
type TrailConfig struct {
	StripeSize    int
	Stripes       int // 1 keeps records in emission order
	WriteTimeout  time.Duration
	FlushInterval time.Duration // 0 flushes only on full stripes, Flush and Close
	NodeID        int64         // snowflake node stamped into record IDs
	Clock         timer.Clock   // defaults to timer.System
}

// tracked is a queue whose hash the trail checkpoints.
type tracked struct {
	queue    string
	fn       CheckpointFunc
	hash     string
	size     int
	recorded bool
}

// Trail is a Recorder that batches records before handing them to a sink.
// Records are buffered until a stripe fills, the flush interval elapses,
// or Flush or Close is called.
//
// Tracked queues are hashed on every flush, and a checkpoint record is
// buffered for each one whose state moved since its last checkpoint.
type Trail struct {
	sink    Sink
	batcher *batcher.StripedBatcher[Record]
	ids     *unique.Snowflake
	clock   timer.Clock
	ticker  *timer.Ticker
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	sources []*tracked
}

var _ Recorder = (*Trail)(nil)

// NewTrail creates a trail writing to sink. A nil logger discards write errors.
func NewTrail(sink Sink, cfg TrailConfig, logger *zap.Logger) (*Trail, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = timer.System
	}

	ids, err := unique.NewSnowflake(cfg.NodeID, cfg.Clock)
	if err != nil {
		return nil, err
	}

	t := &Trail{
		sink:    sink,
		ids:     ids,
		clock:   cfg.Clock,
		timeout: cfg.WriteTimeout,
		logger:  logger.Named("audit"),
	}
	t.batcher = batcher.New[Record](t, batcher.Config{
		StripeSize: cfg.StripeSize,
		Stripes:    cfg.Stripes,
		OnError: func(err error) {
			t.logger.Error("write audit batch", zap.Error(err))
		},
	})
	if cfg.FlushInterval > 0 {
		t.ticker = timer.Every(cfg.FlushInterval, t.flushTick)
	}
	return t, nil
}

// Track registers a queue to checkpoint on every flush.
func (t *Trail) Track(queue string, fn CheckpointFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sources = append(t.sources, &tracked{queue: queue, fn: fn})
}

// Record stamps rec with an ID if it has none and buffers it.
// It fails only once the trail is closed.
func (t *Trail) Record(_ context.Context, rec Record) error {
	if rec.ID == 0 {
		rec.ID = t.ids.Generate()
	}
	return t.batcher.Push(rec)
}

// Consume implements batcher.Consumer.
func (t *Trail) Consume(batch []Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	return t.sink.Write(ctx, batch)
}

// Flush checkpoints tracked queues and writes every buffered record.
func (t *Trail) Flush() error {
	t.checkpoint()
	return t.batcher.Flush()
}

// Close stops the flush ticker, takes a last checkpoint and flushes buffered
// records. Later Record calls return batcher.ErrClosed.
func (t *Trail) Close() error {
	if t.ticker != nil {
		t.ticker.Stop()
	}
	t.checkpoint()
	return t.batcher.Close()
}

func (t *Trail) flushTick() {
	if err := t.Flush(); err != nil {
		t.logger.Error("flush audit trail", zap.Error(err))
	}
}

// checkpoint buffers one checkpoint record per tracked queue that changed.
// Holding mu keeps concurrent flushes from recording the same state twice.
func (t *Trail) checkpoint() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, src := range t.sources {
		hash, size := src.fn()
		if src.recorded && hash == src.hash && size == src.size {
			continue
		}
		rec := Record{
			Queue: src.queue,
			Op:    OpCheckpoint,
			Size:  size,
			Hash:  hash,
			At:    t.clock.Now(),
		}
		if err := t.Record(context.Background(), rec); err != nil {
			t.logger.Warn("record checkpoint", zap.String("queue", src.queue), zap.Error(err))
			continue
		}
		src.hash, src.size, src.recorded = hash, size, true
	}
}
