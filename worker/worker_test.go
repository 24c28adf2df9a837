package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pixelquant"
)

func twoColorImage() []byte {
	return []byte{
		255, 0, 0, 255,
		255, 0, 0, 255,
		0, 0, 255, 255,
		0, 0, 255, 255,
	}
}

func TestPool_Process(t *testing.T) {
	ctx := context.Background()
	pool := NewPool(1)

	resp := pool.Process(ctx, Request{
		Buffer: twoColorImage(),
		Width:  2,
		Height: 2,
		Options: []pixelquant.Option{
			pixelquant.WithClusterQuantity(2),
		},
	})

	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Len(t, resp.Buffer, 16)
	assert.Empty(t, resp.Message)
	assert.NoError(t, resp.Err)
}

func TestPool_Process_Error(t *testing.T) {
	ctx := context.Background()
	pool := NewPool(1)

	resp := pool.Process(ctx, Request{
		Buffer: make([]byte, 10),
		Width:  2,
		Height: 2,
	})

	assert.Equal(t, StatusError, resp.Status)
	assert.Nil(t, resp.Buffer)
	assert.NotEmpty(t, resp.Message)

	var id *pixelquant.ErrInvalidDimensions
	assert.ErrorAs(t, resp.Err, &id)
}

func TestPool_Process_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(1)
	resp := pool.Process(ctx, Request{Buffer: twoColorImage(), Width: 2, Height: 2})

	assert.Equal(t, StatusError, resp.Status)
	assert.ErrorIs(t, resp.Err, context.Canceled)
}

func TestPool_Submit(t *testing.T) {
	ctx := context.Background()
	pool := NewPool(1)

	ch := pool.Submit(ctx, Request{
		Buffer: twoColorImage(),
		Width:  2,
		Height: 2,
		Options: []pixelquant.Option{
			pixelquant.WithClusterQuantity(2),
		},
	})

	resp := <-ch
	require.Equal(t, StatusSuccess, resp.Status)
	assert.Len(t, resp.Buffer, 16)
}

func TestPool_ConcurrentRequestsAreIndependent(t *testing.T) {
	ctx := context.Background()
	pool := NewPool(2)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			resp := pool.Process(ctx, Request{
				Buffer: twoColorImage(),
				Width:  2,
				Height: 2,
				Options: []pixelquant.Option{
					pixelquant.WithClusterQuantity(2),
				},
			})
			if resp.Status != StatusSuccess {
				return resp.Err
			}
			// Two unique colors into two clusters reproduces the input.
			assert.Equal(t, twoColorImage(), resp.Buffer)
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
