package result

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNetwork = errors.New("network down")

func TestResult_OkAndFail(t *testing.T) {
	ok := Ok(42)
	v, err := ok.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, ok.IsOk())
	assert.Equal(t, 42, ok.ValueOr(7))

	failed := Fail[int](errNetwork)
	assert.False(t, failed.IsOk())
	assert.ErrorIs(t, failed.Err(), errNetwork)
	assert.Equal(t, 7, failed.ValueOr(7))
	assert.Zero(t, failed.Value())
}

func TestFail_NilError(t *testing.T) {
	r := Fail[string](nil)
	assert.False(t, r.IsOk())
	assert.Error(t, r.Err())
}

func TestIsCancellation(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want bool
	}{
		{"nil error", context.Background(), nil, false},
		{"plain error", context.Background(), errNetwork, false},
		{"context canceled", context.Background(), context.Canceled, true},
		{"wrapped canceled", context.Background(), fmt.Errorf("get offers: %w", context.Canceled), true},
		{"any error after ctx done", cancelled, errNetwork, true},
		{"deadline on live ctx", context.Background(), context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCancellation(tt.ctx, tt.err))
		})
	}
}

func TestCatching(t *testing.T) {
	ctx := context.Background()

	r, err := Catching(ctx, func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", r.Value())

	r, err = Catching(ctx, func(context.Context) (string, error) { return "", errNetwork })
	require.NoError(t, err)
	assert.ErrorIs(t, r.Err(), errNetwork)
}

func TestCatching_CancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r, err := Catching(ctx, func(ctx context.Context) ([]int, error) {
		cancel()
		return nil, ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, r.Err(), "cancellation must not be folded into the result")
}

func TestCatching_ErrorAfterCancelKeepsBoth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	_, err := Catching(ctx, func(context.Context) (int, error) {
		cancel()
		return 0, errNetwork
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errNetwork)
}

func TestRecover(t *testing.T) {
	ctx := context.Background()

	r, err := Recover(ctx, []string{}, func(context.Context) ([]string, error) {
		return nil, errNetwork
	})
	require.NoError(t, err)
	require.True(t, r.IsOk())
	assert.Equal(t, []string{}, r.Value())

	r, err = Recover(ctx, []string{}, func(context.Context) ([]string, error) {
		return []string{"a"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, r.Value())
}

func TestRecover_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Recover(ctx, 0, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}
