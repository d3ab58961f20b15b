package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpLLMGenerate, 100*time.Millisecond)
	c.RecordTiming(OpLLMGenerate, 300*time.Millisecond)
	c.RecordTiming(OpDBSearch, 50*time.Millisecond)

	snap := c.GetSnapshot()
	require.Contains(t, snap.Operations, OpLLMGenerate)

	gen := snap.Operations[OpLLMGenerate]
	assert.EqualValues(t, 2, gen.Count)
	assert.EqualValues(t, 400, gen.TotalTimeMs)
	assert.InDelta(t, 200, gen.AvgTimeMs, 0.01)
	assert.EqualValues(t, 100, gen.MinTimeMs)
	assert.EqualValues(t, 300, gen.MaxTimeMs)

	search := snap.Operations[OpDBSearch]
	assert.EqualValues(t, 1, search.Count)
}

func TestSnapshotSkipsEmptyOperations(t *testing.T) {
	c := NewCollector()
	snap := c.GetSnapshot()
	assert.Empty(t, snap.Operations)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestReset(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpWebSearch, time.Second)
	c.Reset()
	assert.Empty(t, c.GetSnapshot().Operations)
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordTiming(OpEmbedding, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1000, c.GetSnapshot().Operations[OpEmbedding].Count)
}
