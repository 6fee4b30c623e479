package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoCollapsesBurst(t *testing.T) {
	d := New()
	defer d.Stop()

	var mu sync.Mutex
	var got []string
	for _, q := range []string{"f", "fo", "foo"} {
		d.Do("search", 30*time.Millisecond, func() {
			mu.Lock()
			got = append(got, q)
			mu.Unlock()
		})
	}

	require.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"foo"}, got)
}

func TestDoNamesAreIndependent(t *testing.T) {
	d := New()
	defer d.Stop()

	var calls atomic.Int32
	d.Do("a", 10*time.Millisecond, func() { calls.Add(1) })
	d.Do("b", 10*time.Millisecond, func() { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestStopCancelsPending(t *testing.T) {
	d := New()
	var calls atomic.Int32
	d.Do("a", 20*time.Millisecond, func() { calls.Add(1) })
	d.Stop()
	d.Do("a", time.Millisecond, func() { calls.Add(1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 0, d.Pending())
}
