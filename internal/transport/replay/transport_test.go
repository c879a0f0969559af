package replay

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/transport"
)

func TestReplayTransportLifecycle(t *testing.T) {
	tr := New([]Chunk{{Data: []byte("a")}, {Data: []byte("b")}})
	ctx := context.Background()

	_, err := tr.DiscoverCharacteristics(ctx)
	assert.ErrorIs(t, err, transport.ErrNotConnected)

	require.NoError(t, tr.Connect(ctx))
	assert.ErrorIs(t, tr.Connect(ctx), transport.ErrAlreadyConnected)
	assert.True(t, tr.IsConnected())

	chars, err := tr.DiscoverCharacteristics(ctx)
	require.NoError(t, err)
	read, ok := transport.Find(chars, protocol.ReadCharacteristicID)
	require.True(t, ok)
	assert.True(t, read.Properties.Has(transport.PropNotify))
	_, ok = transport.Find(chars, protocol.WriteCharacteristicID)
	require.True(t, ok)

	assert.ErrorIs(t, tr.Play(ctx), transport.ErrNotConnected, "play needs a subscription")

	var got [][]byte
	tr.OnNotification(func(b []byte) { got = append(got, b) })
	require.NoError(t, tr.Subscribe(read))
	require.NoError(t, tr.Play(ctx))
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, got)

	require.NoError(t, tr.Write(read, []byte("Z")))
	assert.Equal(t, [][]byte{[]byte("Z")}, tr.Written())

	require.NoError(t, tr.Disconnect())
	assert.False(t, tr.IsConnected())
	assert.ErrorIs(t, tr.Write(read, []byte("Z")), transport.ErrNotConnected)
}

func TestReplayRealtimeCancel(t *testing.T) {
	tr := New([]Chunk{{At: 0, Data: []byte("a")}, {At: int64(time.Hour / time.Microsecond), Data: []byte("b")}}, WithRealtime())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, tr.Connect(ctx))
	require.NoError(t, tr.Subscribe(transport.Characteristic{}))

	var got [][]byte
	tr.OnNotification(func(b []byte) {
		got = append(got, b)
		cancel()
	})

	assert.ErrorIs(t, tr.Play(ctx), context.Canceled)
	assert.Equal(t, [][]byte{[]byte("a")}, got)
}

func TestRecorderCapturesAndForwards(t *testing.T) {
	inner := New([]Chunk{{Data: []byte("X65.0,64")}, {Data: []byte(".3       ")}})
	var buf bytes.Buffer
	w := NewWriter(&buf)

	rec := NewRecorder(inner, w, nil)
	tick := rec.start
	rec.now = func() time.Time {
		tick = tick.Add(2 * time.Millisecond)
		return tick
	}

	var forwarded [][]byte
	rec.OnNotification(func(b []byte) { forwarded = append(forwarded, b) })

	ctx := context.Background()
	require.NoError(t, rec.Connect(ctx))
	require.NoError(t, rec.Subscribe(transport.Characteristic{}))
	require.NoError(t, inner.Play(ctx))
	require.NoError(t, rec.Disconnect())

	assert.Equal(t, [][]byte{[]byte("X65.0,64"), []byte(".3       ")}, forwarded)

	got, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []Chunk{
		{At: 2000, Data: []byte("X65.0,64")},
		{At: 4000, Data: []byte(".3       ")},
	}, got)
}
