package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorBatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		frames    int
		wantCalls int
	}{
		{name: "nine frames", frames: 9, wantCalls: 0},
		{name: "ten frames", frames: 10, wantCalls: 1},
		{name: "twenty five frames", frames: 25, wantCalls: 2},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := &countingRecognizer{}
			agg := NewAggregator(rec, &joinComposer{}, 10)

			for i := 0; i < tc.frames; i++ {
				require.NoError(t, agg.Push(context.Background(), "alice", frame()))
			}

			assert.Equal(t, tc.wantCalls, rec.count())
			frames, tokens := agg.Pending("alice")
			assert.Equal(t, tc.frames, frames)
			assert.Equal(t, tc.wantCalls, tokens)
		})
	}
}

func TestAggregatorWindowHoldsLastBatch(t *testing.T) {
	t.Parallel()

	rec := &countingRecognizer{}
	agg := NewAggregator(rec, &joinComposer{}, 3)
	for i := 0; i < 6; i++ {
		f := frame()
		f[0] = float64(i)
		require.NoError(t, agg.Push(context.Background(), "alice", f))
	}

	require.Len(t, rec.calls, 2)
	assert.Equal(t, 2, rec.calls[1].Seq)
	require.Len(t, rec.calls[1].Frames, 3)
	assert.Equal(t, 3.0, rec.calls[1].Frames[0][0])
}

func TestAggregatorFinish(t *testing.T) {
	t.Parallel()

	composer := &joinComposer{}
	agg := NewAggregator(&countingRecognizer{}, composer, 10)
	for i := 0; i < 20; i++ {
		require.NoError(t, agg.Push(context.Background(), "alice", frame()))
	}

	sentence, err := agg.Finish(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "단어 1 단어 2", sentence.Text)
	assert.Equal(t, []string{"단어 1", "단어 2"}, sentence.Tokens)
	assert.Equal(t, 1, composer.calls)

	frames, tokens := agg.Pending("alice")
	assert.Zero(t, frames)
	assert.Zero(t, tokens)
	assert.Zero(t, agg.ActiveUsers())
}

func TestAggregatorFinishWithoutTokens(t *testing.T) {
	t.Parallel()

	composer := &joinComposer{}
	agg := NewAggregator(&countingRecognizer{}, composer, 10)

	sentence, err := agg.Finish(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, sentence.IsEmpty())

	for i := 0; i < 5; i++ {
		require.NoError(t, agg.Push(context.Background(), "alice", frame()))
	}
	sentence, err = agg.Finish(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, sentence.IsEmpty())
	assert.Zero(t, composer.calls)
}

func TestAggregatorRecognitionFailureYieldsNoToken(t *testing.T) {
	t.Parallel()

	rec := &countingRecognizer{err: errors.New("model offline")}
	agg := NewAggregator(rec, &joinComposer{}, 2)
	for i := 0; i < 4; i++ {
		require.NoError(t, agg.Push(context.Background(), "alice", frame()))
	}

	assert.Equal(t, 2, rec.count())
	_, tokens := agg.Pending("alice")
	assert.Zero(t, tokens)
}

func TestAggregatorRejectsEmptyFrame(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(&countingRecognizer{}, &joinComposer{}, 10)
	assert.Error(t, agg.Push(context.Background(), "alice", nil))
	assert.Zero(t, agg.ActiveUsers())
}

func TestAggregatorUsersAreIndependent(t *testing.T) {
	t.Parallel()

	rec := &countingRecognizer{}
	agg := NewAggregator(rec, &joinComposer{}, 10)

	var wg sync.WaitGroup
	for u := 0; u < 8; u++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < 30; i++ {
				_ = agg.Push(context.Background(), user, frame())
			}
		}(fmt.Sprintf("user-%d", u))
	}
	wg.Wait()

	assert.Equal(t, 24, rec.count())
	for u := 0; u < 8; u++ {
		frames, tokens := agg.Pending(fmt.Sprintf("user-%d", u))
		assert.Equal(t, 30, frames)
		assert.Equal(t, 3, tokens)
	}
}

func TestAggregatorSerializesOneUsersFrames(t *testing.T) {
	t.Parallel()

	const (
		senders = 6
		windows = 7
	)
	rec := &countingRecognizer{}
	agg := NewAggregator(rec, &joinComposer{}, 10)

	frames := make(chan struct{}, 10*windows)
	for i := 0; i < 10*windows; i++ {
		frames <- struct{}{}
	}
	close(frames)

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range frames {
				assert.NoError(t, agg.Push(context.Background(), "alice", frame()))
			}
		}()
	}
	wg.Wait()

	require.Equal(t, windows, rec.count())
	seqs := make(map[int]bool)
	for _, w := range rec.calls {
		assert.Len(t, w.Frames, 10)
		seqs[w.Seq] = true
	}
	assert.Len(t, seqs, windows)

	pending, tokens := agg.Pending("alice")
	assert.Equal(t, 10*windows, pending)
	assert.Equal(t, windows, tokens)
}

func TestAggregatorFinishRacingPush(t *testing.T) {
	t.Parallel()

	const (
		senders = 4
		each    = 200
	)
	// One token per frame, so counting tokens counts frames.
	agg := NewAggregator(&countingRecognizer{}, &joinComposer{}, 1)

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				assert.NoError(t, agg.Push(context.Background(), "alice", frame()))
			}
		}()
	}

	stop := make(chan struct{})
	finished := make(chan int)
	go func() {
		total := 0
		for {
			select {
			case <-stop:
				finished <- total
				return
			default:
			}
			sentence, err := agg.Finish(context.Background(), "alice")
			assert.NoError(t, err)
			total += len(sentence.Tokens)
		}
	}()

	wg.Wait()
	close(stop)
	total := <-finished

	last, err := agg.Finish(context.Background(), "alice")
	require.NoError(t, err)
	total += len(last.Tokens)

	assert.Equal(t, senders*each, total)
	assert.Zero(t, agg.ActiveUsers())
}
