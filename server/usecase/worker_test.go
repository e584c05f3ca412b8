package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolDo(t *testing.T) {
	t.Parallel()

	p := startedPool(t)
	boom := errors.New("boom")

	assert.NoError(t, p.Do(context.Background(), func(context.Context) error { return nil }))
	assert.ErrorIs(t, p.Do(context.Background(), func(context.Context) error { return boom }), boom)
}

func TestPoolRecoversPanics(t *testing.T) {
	t.Parallel()

	p := startedPool(t)
	err := p.Do(context.Background(), func(context.Context) error { panic("bad job") })
	assert.ErrorContains(t, err, "panicked")

	assert.NoError(t, p.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestPoolRunsConcurrently(t *testing.T) {
	t.Parallel()

	p := startedPool(t)
	release := make(chan struct{})
	var running atomic.Int32

	futures := make([]*Future, 4)
	for i := range futures {
		futures[i] = p.Submit(context.Background(), func(context.Context) error {
			running.Add(1)
			<-release
			return nil
		})
	}
	require.Eventually(t, func() bool { return running.Load() == 4 }, time.Second, 5*time.Millisecond)
	close(release)
	for _, f := range futures {
		assert.NoError(t, f.Wait(context.Background()))
	}
}

func TestPoolWaitHonorsContext(t *testing.T) {
	t.Parallel()

	p := startedPool(t)
	release := make(chan struct{})
	defer close(release)

	f := p.Submit(context.Background(), func(context.Context) error {
		<-release
		return nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.Wait(ctx), context.DeadlineExceeded)
}

func TestPoolSubmitAfterStop(t *testing.T) {
	t.Parallel()

	p := NewPool(1, 1)
	p.Start(context.Background())
	require.NoError(t, p.Stop(context.Background()))
	require.NoError(t, p.Stop(context.Background()))

	err := p.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestCallReturnsValue(t *testing.T) {
	t.Parallel()

	p := startedPool(t)
	n, err := Call(context.Background(), p, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	boom := errors.New("boom")
	n, err = Call(context.Background(), p, func(context.Context) (int, error) { return 7, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
}

func TestCallAbandonedJobKeepsItsValue(t *testing.T) {
	t.Parallel()

	p := startedPool(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-entered
		cancel()
	}()
	got, err := Call(ctx, p, func(context.Context) ([]string, error) {
		defer close(done)
		close(entered)
		<-release
		return []string{"학교"}, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)

	close(release)
	<-done
	assert.Nil(t, got)
}
