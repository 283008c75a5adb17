package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const defaultKeyPrefix = "audit"

// ErrNoCheckpoint is returned by Latest for a queue without a stored checkpoint.
var ErrNoCheckpoint = errors.New("audit: no checkpoint")

// Store is the subset of the Redis engine the sink needs.
// Get reports a missing key as ok == false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	PushCapped(ctx context.Context, key string, max int64, values ...[]byte) error
	Range(ctx context.Context, key string, n int64) ([][]byte, error)
}

// RedisSink keeps a capped history of records per queue plus the latest checkpoint.
//
// Keys:
//
//	<prefix>:<queue>:log     newest-first list of JSON records
//	<prefix>:<queue>:latest  last checkpoint record written
type RedisSink struct {
	store      Store
	prefix     string
	maxEntries int64
	latestTTL  time.Duration
}

var _ Sink = (*RedisSink)(nil)

// NewRedisSink creates a sink over store. maxEntries <= 0 keeps the whole history.
func NewRedisSink(store Store, maxEntries int, latestTTL time.Duration) *RedisSink {
	return &RedisSink{
		store:      store,
		prefix:     defaultKeyPrefix,
		maxEntries: int64(maxEntries),
		latestTTL:  latestTTL,
	}
}

func (s *RedisSink) logKey(queue string) string    { return s.prefix + ":" + queue + ":log" }
func (s *RedisSink) latestKey(queue string) string { return s.prefix + ":" + queue + ":latest" }

// Write appends the batch to each queue's history. A queue's latest checkpoint
// moves to its newest hashed record in the batch, once its history is pushed.
func (s *RedisSink) Write(ctx context.Context, batch []Record) error {
	byQueue := make(map[string][][]byte)
	latest := make(map[string]Record)
	var order []string

	for _, rec := range batch {
		b, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "marshal audit record")
		}
		if _, ok := byQueue[rec.Queue]; !ok {
			order = append(order, rec.Queue)
		}
		byQueue[rec.Queue] = append(byQueue[rec.Queue], b)
		if rec.Hash != "" {
			latest[rec.Queue] = rec
		}
	}

	var err error
	for _, q := range order {
		if e := s.store.PushCapped(ctx, s.logKey(q), s.maxEntries, byQueue[q]...); e != nil {
			err = multierr.Append(err, errors.Wrapf(e, "push audit log for %s", q))
			continue
		}
		cp, ok := latest[q]
		if !ok {
			continue
		}
		if e := s.store.Set(ctx, s.latestKey(q), cp, s.latestTTL); e != nil {
			err = multierr.Append(err, errors.Wrapf(e, "set latest checkpoint for %s", q))
		}
	}
	return err
}

// Latest returns the last checkpoint written for queue, or ErrNoCheckpoint.
func (s *RedisSink) Latest(ctx context.Context, queue string) (Record, error) {
	var rec Record
	b, ok, err := s.store.Get(ctx, s.latestKey(queue))
	if err != nil {
		return rec, errors.Wrapf(err, "get latest checkpoint for %s", queue)
	}
	if !ok {
		return rec, errors.Wrap(ErrNoCheckpoint, queue)
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, errors.Wrap(err, "unmarshal audit record")
	}
	return rec, nil
}

// History returns up to n newest records for queue.
func (s *RedisSink) History(ctx context.Context, queue string, n int) ([]Record, error) {
	raw, err := s.store.Range(ctx, s.logKey(queue), int64(n))
	if err != nil {
		return nil, errors.Wrapf(err, "read audit log for %s", queue)
	}
	out := make([]Record, 0, len(raw))
	for _, b := range raw {
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, errors.Wrap(err, "unmarshal audit record")
		}
		out = append(out, rec)
	}
	return out, nil
}
