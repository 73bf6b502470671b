package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapEmployees(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprintf("emp-%02d", i)
	}
	var calls atomic.Int32

	out, err := MapEmployees(context.Background(), ids, 8, func(ctx context.Context, id string) (int, error) {
		calls.Add(1)
		return len(id), nil
	})

	require.NoError(t, err)
	assert.Len(t, out, 50)
	assert.Equal(t, int32(50), calls.Load())
	assert.Equal(t, 6, out["emp-07"])
}

func TestMapEmployees_PropagatesError(t *testing.T) {
	boom := errors.New("boom")

	out, err := MapEmployees(context.Background(), []string{"a", "b", "c"}, 0, func(ctx context.Context, id string) (string, error) {
		if id == "b" {
			return "", boom
		}
		return id, nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}
