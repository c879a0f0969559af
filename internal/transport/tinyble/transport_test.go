package tinyble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/transport"
)

func TestOperationsRequireConnection(t *testing.T) {
	tr := New("AA:BB:CC:DD:EE:FF", nil)
	ch := transport.Characteristic{UUID: protocol.WriteCharacteristicID}

	assert.False(t, tr.IsConnected())

	_, err := tr.DiscoverCharacteristics(context.Background())
	assert.ErrorIs(t, err, transport.ErrNotConnected)
	assert.ErrorIs(t, tr.Write(ch, []byte("Z")), transport.ErrNotConnected)
	assert.ErrorIs(t, tr.Subscribe(ch), transport.ErrNotConnected)
	assert.ErrorIs(t, tr.Disconnect(), transport.ErrNotConnected)
}
