package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoCleanStop(t *testing.T) {
	t.Parallel()

	s := New(context.Background())
	s.Go("waiter", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.Equal(t, int64(1), s.Counters().Active)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Zero(t, s.Counters().Active)
	assert.Equal(t, uint64(1), s.Counters().Started)
}

func TestCancelOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := New(context.Background(), WithCancelOnError(true))
	s.Go("sibling", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	s.Go("failing", func(context.Context) error { return boom })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.Wait(ctx)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func TestPanicRecorded(t *testing.T) {
	t.Parallel()

	s := New(context.Background())
	s.Go0("panicky", func(context.Context) { panic("oops") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.Wait(ctx)
	require.Error(t, err)
	var pe *panicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "oops", pe.value)
}

func TestGoRestart(t *testing.T) {
	t.Parallel()

	s := New(context.Background())
	var runs atomic.Int32
	s.GoRestart("flaky", time.Millisecond, 5*time.Millisecond, func(context.Context) error {
		if runs.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, int32(3), runs.Load())
}
