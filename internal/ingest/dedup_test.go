package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketflow.dev/ticketflow/internal/hierarchy"
	"ticketflow.dev/ticketflow/internal/planner"
)

func fixedRecords() []planner.CreationRecord {
	return []planner.CreationRecord{
		{LocalID: 1, Kind: hierarchy.KindEpic, Title: "Email inquiry", RemoteID: "PROJ-1", RemoteURL: "https://tracker.example.com/browse/PROJ-1", Outcome: planner.OutcomeCreated},
	}
}

func countingPipeline(runs *atomic.Int64) Pipeline {
	return func(ctx context.Context, key Key, body string) ([]planner.CreationRecord, error) {
		runs.Add(1)
		return fixedRecords(), nil
	}
}

func TestIngestFirstSight(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	d := NewDeduplicator(NewMemoryStore(), countingPipeline(&runs))

	outcome, duplicate, err := d.Ingest(context.Background(), Key{MessageID: "msg-1", ThreadID: "thr-1"}, "please fix the login page")
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.Equal(t, int64(1), runs.Load())
	assert.Equal(t, "msg-1", outcome.MessageID)
	assert.Equal(t, "thr-1", outcome.ThreadID)
	assert.NotEmpty(t, outcome.RunID)
	assert.Len(t, outcome.Records, 1)
}

func TestIngestRepeatReturnsStoredOutcome(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	d := NewDeduplicator(NewMemoryStore(), countingPipeline(&runs))

	first, _, err := d.Ingest(context.Background(), Key{MessageID: "msg-1"}, "body")
	require.NoError(t, err)

	second, duplicate, err := d.Ingest(context.Background(), Key{MessageID: "msg-1"}, "body")
	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, int64(1), runs.Load(), "pipeline must not run twice for the same message id")
}

func TestIngestRejectsMissingMessageID(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	d := NewDeduplicator(NewMemoryStore(), countingPipeline(&runs))

	_, _, err := d.Ingest(context.Background(), Key{MessageID: "   "}, "body")
	require.Error(t, err)
	assert.Equal(t, int64(0), runs.Load())
}

func TestIngestConcurrentSameKeyRunsOnce(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	release := make(chan struct{})
	d := NewDeduplicator(NewMemoryStore(), func(ctx context.Context, key Key, body string) ([]planner.CreationRecord, error) {
		runs.Add(1)
		<-release
		return fixedRecords(), nil
	})

	const callers = 8
	outcomes := make([]*Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, _, err := d.Ingest(context.Background(), Key{MessageID: "msg-race"}, "body")
			require.NoError(t, err)
			outcomes[i] = outcome
		}(i)
	}

	// Let the callers pile up behind the single flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), runs.Load())
	for i := 1; i < callers; i++ {
		assert.Equal(t, outcomes[0].RunID, outcomes[i].RunID, "caller %d saw a different outcome", i)
	}
}

func TestIngestConcurrentDistinctKeys(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	d := NewDeduplicator(NewMemoryStore(), countingPipeline(&runs))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, duplicate, err := d.Ingest(context.Background(), Key{MessageID: fmt.Sprintf("msg-%d", i)}, "body")
			require.NoError(t, err)
			assert.False(t, duplicate)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(5), runs.Load())
}

func TestIngestPipelineErrorNotStored(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	failing := true
	d := NewDeduplicator(NewMemoryStore(), func(ctx context.Context, key Key, body string) ([]planner.CreationRecord, error) {
		runs.Add(1)
		if failing {
			return nil, fmt.Errorf("model returned garbage")
		}
		return fixedRecords(), nil
	})

	_, _, err := d.Ingest(context.Background(), Key{MessageID: "msg-1"}, "body")
	require.Error(t, err)

	// A failed run had no remote side effects; redelivery retries it.
	failing = false
	outcome, duplicate, err := d.Ingest(context.Background(), Key{MessageID: "msg-1"}, "body")
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.NotNil(t, outcome)
	assert.Equal(t, int64(2), runs.Load())
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, 0)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, ok)

	outcome := &Outcome{
		RunID:      "run-1",
		MessageID:  "msg-1",
		Records:    fixedRecords(),
		ReceivedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, "msg-1", outcome))

	got, ok, err := store.Get(ctx, "msg-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, outcome.RunID, got.RunID)
	assert.Equal(t, outcome.Records, got.Records)
}

func TestDeduplicatorWithRedisStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var runs atomic.Int64
	store := NewRedisStore(client, time.Hour)
	d := NewDeduplicator(store, countingPipeline(&runs))

	first, duplicate, err := d.Ingest(context.Background(), Key{MessageID: "msg-9"}, "body")
	require.NoError(t, err)
	assert.False(t, duplicate)

	// A second deduplicator simulates a restarted server sharing Redis.
	d2 := NewDeduplicator(store, countingPipeline(&runs))
	second, duplicate, err := d2.Ingest(context.Background(), Key{MessageID: "msg-9"}, "body")
	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, int64(1), runs.Load())
}
