package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestKeepsNewestValue(t *testing.T) {
	l := NewLatest[int]()
	require.True(t, l.Offer(1))
	require.True(t, l.Offer(2))
	require.True(t, l.Offer(3))

	assert.Equal(t, 3, <-l.C())

	select {
	case v := <-l.C():
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestLatestDeliversEachValueToFastConsumer(t *testing.T) {
	l := NewLatest[string]()
	for _, v := range []string{"a", "b", "c"} {
		require.True(t, l.Offer(v))
		assert.Equal(t, v, <-l.C())
	}
}

func TestLatestCloseDropsPendingValue(t *testing.T) {
	l := NewLatest[int]()
	l.Offer(7)
	l.Close()

	v, ok := <-l.C()
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.False(t, l.Offer(8))
	assert.True(t, l.Closed())

	// second close is a no-op
	l.Close()
}
