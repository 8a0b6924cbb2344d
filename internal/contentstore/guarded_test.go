package contentstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/pkg/platform/circuit"
	"medledger/pkg/platform/sentinel"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestGuardedStore(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through while closed", func(t *testing.T) {
		g := NewGuarded(NewInMemory(), circuit.New("content"))
		ref, err := g.Put(ctx, []byte("scan"))
		require.NoError(t, err)
		data, err := g.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, []byte("scan"), data)
	})

	t.Run("missing blobs do not trip the breaker", func(t *testing.T) {
		breaker := circuit.New("content", circuit.WithFailureThreshold(1))
		g := NewGuarded(NewInMemory(), breaker)
		_, err := g.Get(ctx, RefFor([]byte("absent")))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.False(t, breaker.IsOpen())
	})

	t.Run("opens after failures and rejects without calling the backend", func(t *testing.T) {
		fake := newFakeS3()
		fake.fail = errors.New("connection reset")
		clock := &fakeClock{t: time.Unix(0, 0)}
		breaker := circuit.New("content", circuit.WithFailureThreshold(2))
		g := NewGuarded(NewS3(fake, "records", ""), breaker,
			WithProbeInterval(time.Minute), withClock(clock.now))

		for range 2 {
			_, err := g.Has(ctx, "sha256-x")
			assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		}
		require.True(t, breaker.IsOpen())

		fake.fail = nil
		_, err := g.Put(ctx, []byte("lab"))
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.Empty(t, fake.objects)
	})

	t.Run("probes after the interval and closes on recovery", func(t *testing.T) {
		fake := newFakeS3()
		fake.fail = errors.New("connection reset")
		clock := &fakeClock{t: time.Unix(0, 0)}
		breaker := circuit.New("content", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(2))
		g := NewGuarded(NewS3(fake, "records", ""), breaker,
			WithProbeInterval(time.Minute), withClock(clock.now))

		_, err := g.Put(ctx, []byte("lab"))
		require.Error(t, err)
		require.True(t, breaker.IsOpen())

		fake.fail = nil
		clock.advance(time.Minute)
		ref, err := g.Put(ctx, []byte("lab"))
		require.NoError(t, err)
		assert.True(t, breaker.IsOpen())

		_, err = g.Get(ctx, ref)
		assert.ErrorIs(t, err, sentinel.ErrUnavailable, "second probe waits for the interval")

		clock.advance(time.Minute)
		ok, err := g.Has(ctx, ref)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, breaker.IsOpen())
	})
}
