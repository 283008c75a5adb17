package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/huynhanx03/servicequeue/pkg/mq/batcher"
	"github.com/huynhanx03/servicequeue/pkg/unique"
)

var errSink = errors.New("sink failed")

const emptyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func record(queue string, op Op, size int) Record {
	return Record{
		Queue: queue,
		Op:    op,
		Size:  size,
		At:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func checkpointRecord(queue string, size int, hash string) Record {
	rec := record(queue, OpCheckpoint, size)
	rec.Hash = hash
	return rec
}

// fixedClock always reports the same instant.
type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// queueState is a mutable CheckpointFunc source.
type queueState struct {
	mu    sync.Mutex
	hash  string
	size  int
	calls int
}

func (s *queueState) set(hash string, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hash, s.size = hash, size
}

func (s *queueState) checkpoint() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.hash, s.size
}

// memorySink collects written batches.
type memorySink struct {
	mu      sync.Mutex
	batches [][]Record
	err     error
}

func (m *memorySink) Write(_ context.Context, batch []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, batch)
	return m.err
}

func (m *memorySink) records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

// memoryStore is an in-memory Store.
type memoryStore struct {
	kv    map[string][]byte
	lists map[string][][]byte
	ttls  map[string]time.Duration
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		kv:    make(map[string][]byte),
		lists: make(map[string][][]byte),
		ttls:  make(map[string]time.Duration),
	}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m.kv[key]
	return b, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.kv[key] = b
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) PushCapped(_ context.Context, key string, max int64, values ...[]byte) error {
	if m.err != nil {
		return m.err
	}
	for _, v := range values {
		m.lists[key] = append([][]byte{v}, m.lists[key]...)
	}
	if max > 0 && int64(len(m.lists[key])) > max {
		m.lists[key] = m.lists[key][:max]
	}
	return nil
}

func (m *memoryStore) Range(_ context.Context, key string, n int64) ([][]byte, error) {
	l := m.lists[key]
	if int64(len(l)) > n {
		l = l[:n]
	}
	return l, nil
}

// --- LogSink ---

func TestLogSink_Write(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))

	require.NoError(t, sink.Write(context.Background(), []Record{
		record("orders", OpEnqueue, 1),
		record("orders", OpDequeue, 0),
		checkpointRecord("orders", 0, emptyHash),
	}))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "queue checkpoint", entries[0].Message)
	assert.Equal(t, "audit", entries[0].LoggerName)

	fields := entries[1].ContextMap()
	assert.Equal(t, "orders", fields["queue"])
	assert.Equal(t, "dequeue", fields["op"])
	assert.EqualValues(t, 0, fields["size"])
	assert.NotContains(t, fields, "hash")

	assert.Equal(t, emptyHash, entries[2].ContextMap()["hash"])
}

func TestLogSink_NilLogger(t *testing.T) {
	assert.NoError(t, NewLogSink(nil).Write(context.Background(), []Record{record("q", OpClear, 0)}))
}

// --- MultiSink ---

func TestMultiSink_WritesAllAndCombinesErrors(t *testing.T) {
	ok := &memorySink{}
	bad := &memorySink{err: errSink}
	sink := MultiSink{bad, ok}

	err := sink.Write(context.Background(), []Record{record("q", OpEnqueue, 1)})

	assert.ErrorIs(t, err, errSink)
	assert.Len(t, ok.records(), 1, "healthy sink must still receive the batch")
}

// --- Sync ---

func TestSync_WritesSingleRecord(t *testing.T) {
	sink := &memorySink{}
	rec := Sync(sink)

	require.NoError(t, rec.Record(context.Background(), record("q", OpEnqueue, 1)))

	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 1)
}

// --- RedisSink ---

func TestRedisSink_WriteAndLatest(t *testing.T) {
	store := newMemoryStore()
	sink := NewRedisSink(store, 3, time.Hour)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, []Record{
		record("a", OpEnqueue, 1),
		checkpointRecord("a", 1, "aa"),
		record("b", OpEnqueue, 1),
		record("a", OpEnqueue, 2),
		record("a", OpDequeue, 1),
	}))

	latest, err := sink.Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, OpCheckpoint, latest.Op, "latest only moves on hashed records")
	assert.Equal(t, "aa", latest.Hash)
	assert.Equal(t, 1, latest.Size)
	assert.Equal(t, time.Hour, store.ttls["audit:a:latest"])

	history, err := sink.History(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, history, 3, "history is capped at maxEntries")
	assert.Equal(t, OpDequeue, history[0].Op, "newest first")
	assert.Equal(t, 2, history[1].Size)
	assert.Empty(t, history[0].Hash)

	history, err = sink.History(ctx, "b", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = sink.Latest(ctx, "b")
	assert.ErrorIs(t, err, ErrNoCheckpoint, "b has history but no checkpoint")
}

func TestRedisSink_LatestMissing(t *testing.T) {
	sink := NewRedisSink(newMemoryStore(), 0, 0)
	_, err := sink.Latest(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestRedisSink_StoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errSink
	sink := NewRedisSink(store, 0, 0)

	err := sink.Write(context.Background(), []Record{checkpointRecord("a", 0, emptyHash)})
	assert.ErrorIs(t, err, errSink)
	_, ok, _ := store.Get(context.Background(), "audit:a:latest")
	assert.False(t, ok, "latest must not move when the history push fails")
}

// --- KafkaSink ---

func TestKafkaSink_Write(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var rec Record
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		if rec.Queue != "orders" {
			return errors.New("unexpected queue " + rec.Queue)
		}
		return nil
	})
	producer.ExpectSendMessageAndSucceed()

	sink := NewKafkaSinkWithProducer(producer, "queue-audit")
	err := sink.Write(context.Background(), []Record{
		record("orders", OpEnqueue, 1),
		record("orders", OpDequeue, 0),
	})
	require.NoError(t, err)
	require.NoError(t, sink.Close())
}

func TestKafkaSink_WriteFails(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	sink := NewKafkaSinkWithProducer(producer, "queue-audit")
	err := sink.Write(context.Background(), []Record{record("orders", OpEnqueue, 1)})
	assert.Error(t, err)
	require.NoError(t, sink.Close())
}

func TestKafkaSink_EmptyBatch(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	sink := NewKafkaSinkWithProducer(producer, "queue-audit")
	assert.NoError(t, sink.Write(context.Background(), nil))
	require.NoError(t, sink.Close())
}

// --- Trail ---

func TestTrail_BatchesAndFlushesOnClose(t *testing.T) {
	sink := &memorySink{}
	trail, err := NewTrail(sink, TrailConfig{StripeSize: 3, Stripes: 1}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		require.NoError(t, trail.Record(ctx, record("q", OpEnqueue, i)))
	}
	assert.Len(t, sink.batches, 1, "first full stripe is written")

	require.NoError(t, trail.Close())
	recs := sink.records()
	require.Len(t, recs, 4)
	for i, rec := range recs {
		assert.Equal(t, i+1, rec.Size, "records keep emission order with one stripe")
		if i > 0 {
			assert.Greater(t, rec.ID, recs[i-1].ID, "ids increase in emission order")
		}
	}

	assert.ErrorIs(t, trail.Record(ctx, record("q", OpEnqueue, 5)), batcher.ErrClosed)
}

func TestTrail_WriteErrorLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sink := &memorySink{err: errSink}
	trail, err := NewTrail(sink, TrailConfig{StripeSize: 1, Stripes: 1}, zap.New(core))
	require.NoError(t, err)

	require.NoError(t, trail.Record(context.Background(), record("q", OpEnqueue, 1)))

	assert.Equal(t, 1, logs.FilterMessage("write audit batch").Len())
}

func TestTrail_Flush(t *testing.T) {
	sink := &memorySink{}
	trail, err := NewTrail(sink, TrailConfig{StripeSize: 100}, nil)
	require.NoError(t, err)

	rec := record("q", OpEnqueue, 1)
	rec.ID = 42
	require.NoError(t, trail.Record(context.Background(), rec))
	require.NoError(t, trail.Flush())

	recs := sink.records()
	require.Len(t, recs, 1)
	assert.EqualValues(t, 42, recs[0].ID, "preset ids are kept")
	require.NoError(t, trail.Close())
}

func TestTrail_FlushInterval(t *testing.T) {
	sink := &memorySink{}
	trail, err := NewTrail(sink, TrailConfig{StripeSize: 100, Stripes: 1, FlushInterval: 10 * time.Millisecond}, nil)
	require.NoError(t, err)
	defer trail.Close()

	require.NoError(t, trail.Record(context.Background(), record("q", OpEnqueue, 1)))

	assert.Eventually(t, func() bool { return len(sink.records()) == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestNewTrail_BadNode(t *testing.T) {
	_, err := NewTrail(&memorySink{}, TrailConfig{NodeID: 4096}, nil)
	assert.ErrorIs(t, err, unique.ErrNodeRange)
}

func TestTrail_TrackRecordsChangedCheckpoints(t *testing.T) {
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	sink := &memorySink{}
	trail, err := NewTrail(sink, TrailConfig{StripeSize: 100, Stripes: 1, Clock: fixedClock(at)}, nil)
	require.NoError(t, err)

	state := &queueState{hash: emptyHash}
	trail.Track("jobs", state.checkpoint)

	require.NoError(t, trail.Flush())
	require.NoError(t, trail.Flush())
	state.set("bb", 2)
	require.NoError(t, trail.Record(context.Background(), record("jobs", OpEnqueue, 2)))
	require.NoError(t, trail.Flush())
	require.NoError(t, trail.Close())

	recs := sink.records()
	require.Len(t, recs, 3, "unchanged state is not checkpointed twice")

	assert.Equal(t, emptyHash, recs[0].Hash)
	assert.Equal(t, OpCheckpoint, recs[0].Op)
	assert.Equal(t, at, recs[0].At)
	assert.NotZero(t, recs[0].ID)

	assert.Equal(t, OpEnqueue, recs[1].Op)
	assert.Equal(t, OpCheckpoint, recs[2].Op)
	assert.Equal(t, "bb", recs[2].Hash)
	assert.Equal(t, 2, recs[2].Size)
	assert.Equal(t, 4, state.calls, "hashed once per flush and once on close")
}

func TestTrail_CloseTakesFinalCheckpoint(t *testing.T) {
	sink := &memorySink{}
	trail, err := NewTrail(sink, TrailConfig{StripeSize: 100, Stripes: 1}, nil)
	require.NoError(t, err)

	state := &queueState{hash: "cc", size: 3}
	trail.Track("jobs", state.checkpoint)
	require.NoError(t, trail.Close())

	recs := sink.records()
	require.Len(t, recs, 1)
	assert.Equal(t, OpCheckpoint, recs[0].Op)
	assert.Equal(t, "cc", recs[0].Hash)

	require.NoError(t, trail.Close())
	assert.Len(t, sink.records(), 1, "second close writes nothing new")
}

func TestTrail_FlushIntervalCheckpoints(t *testing.T) {
	sink := &memorySink{}
	trail, err := NewTrail(sink, TrailConfig{StripeSize: 100, Stripes: 1, FlushInterval: 10 * time.Millisecond}, nil)
	require.NoError(t, err)
	defer trail.Close()

	state := &queueState{hash: "dd", size: 1}
	trail.Track("jobs", state.checkpoint)

	assert.Eventually(t, func() bool {
		recs := sink.records()
		return len(recs) == 1 && recs[0].Hash == "dd"
	}, 2*time.Second, 5*time.Millisecond)
}
