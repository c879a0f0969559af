package groutine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoNamesContext(t *testing.T) {
	got := make(chan string, 1)

	Go(context.Background(), "replay-player", func(ctx context.Context) {
		got <- Name(ctx)
	})

	assert.Equal(t, "replay-player", <-got)
}

func TestGoNilParent(t *testing.T) {
	done := make(chan struct{})

	//nolint:staticcheck // nil parent is accepted
	Go(nil, "nil-parent", func(ctx context.Context) {
		assert.NotNil(t, ctx)
		close(done)
	})

	<-done
}

func TestNameOutsideGoroutine(t *testing.T) {
	assert.Empty(t, Name(context.Background()))
	//nolint:staticcheck // nil context is accepted
	assert.Empty(t, Name(nil))
}
