// ABOUTME: Tests for the update id dedupe cache
// ABOUTME: Covers duplicate detection, TTL expiry and size-bounded eviction

package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAndMark_DetectsDuplicates(t *testing.T) {
	c := New(time.Minute, 100)
	defer c.Close()

	assert.False(t, c.CheckAndMark(100))
	assert.True(t, c.CheckAndMark(100))
	assert.False(t, c.CheckAndMark(101))
}

func TestCheckAndMark_ExpiredEntryIsNew(t *testing.T) {
	c := New(10*time.Millisecond, 100)
	defer c.Close()

	assert.False(t, c.CheckAndMark(100))
	time.Sleep(20 * time.Millisecond)
	assert.False(t, c.CheckAndMark(100))
}

func TestCheckAndMark_EvictsOldestAtCapacity(t *testing.T) {
	c := New(time.Minute, 2)
	defer c.Close()

	assert.False(t, c.CheckAndMark(1))
	assert.False(t, c.CheckAndMark(2))
	assert.False(t, c.CheckAndMark(3)) // evicts 1

	assert.False(t, c.CheckAndMark(1)) // 1 was evicted, counts as new
	assert.True(t, c.CheckAndMark(3))
}

func TestForget_ReleasesMarkedID(t *testing.T) {
	c := New(time.Minute, 100)
	defer c.Close()

	assert.False(t, c.CheckAndMark(100))
	c.Forget(100)
	assert.False(t, c.CheckAndMark(100))
	assert.True(t, c.CheckAndMark(100))

	c.Forget(999) // unknown id is a no-op
}

func TestClose_Idempotent(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	c.Close()
}
