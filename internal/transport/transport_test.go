package transport

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPropertiesString(t *testing.T) {
	assert.Equal(t, "none", Properties(0).String())
	assert.Equal(t, "read|notify", (PropRead | PropNotify).String())
	assert.Equal(t, "write-without-response|write", (PropWrite | PropWriteWithoutResponse).String())
}

func TestPropertiesHas(t *testing.T) {
	p := PropRead | PropNotify
	assert.True(t, p.Has(PropNotify))
	assert.True(t, p.Has(PropRead|PropNotify))
	assert.False(t, p.Has(PropWrite))
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not connected", errors.New("device not connected"), ErrNotConnected},
		{"already connected", errors.New("Device Already Connected"), ErrAlreadyConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), tt.err.Error())
		})
	}

	t.Run("passthrough", func(t *testing.T) {
		orig := errors.New("boom")
		assert.Same(t, orig, NormalizeError(orig))
		assert.NoError(t, NormalizeError(nil))
	})
}

func TestConnectionErrorIs(t *testing.T) {
	err := &ConnectionError{State: NotConnected, Msg: "write"}
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NotErrorIs(t, err, ErrAlreadyConnected)
	assert.Equal(t, "not_connected: write", err.Error())
}

func TestFind(t *testing.T) {
	a := Characteristic{UUID: uuid.MustParse("0003cdd1-0000-1000-8000-00805f9b0131"), Properties: PropNotify}
	b := Characteristic{UUID: uuid.MustParse("0003cdd2-0000-1000-8000-00805f9b0131"), Properties: PropWrite}

	got, ok := Find([]Characteristic{a, b}, b.UUID)
	assert.True(t, ok)
	assert.Equal(t, b, got)

	_, ok = Find([]Characteristic{a}, b.UUID)
	assert.False(t, ok)
}
