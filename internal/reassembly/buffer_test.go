package reassembly

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/brewlink/internal/protocol"
)

// stream builds n distinct, valid records back to back
func stream(n int) []byte {
	var b bytes.Buffer
	for i := 0; i < n; i++ {
		rec := fmt.Sprintf("X%d.5,%d.0", i, i)
		b.WriteString(rec)
		b.Write(bytes.Repeat([]byte{' '}, protocol.NotificationFrameSize-len(rec)))
	}
	return b.Bytes()
}

func split(data []byte, size int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := min(size, len(data))
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

func TestPushChunkingInvariance(t *testing.T) {
	data := stream(20)

	whole := New().Push(data)
	require.Len(t, whole, 20)

	for _, size := range []int{1, 3, 16, 17, 18, 20, 33, 100, 136, 137, 500} {
		t.Run(fmt.Sprintf("chunk_%d", size), func(t *testing.T) {
			buf := New()
			var got []protocol.RawRecord
			for _, c := range split(data, size) {
				got = append(got, buf.Push(c)...)
				assert.Less(t, buf.Len(), protocol.NotificationFrameSize)
			}
			assert.Equal(t, whole, got)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestPushRetainsTail(t *testing.T) {
	buf := New()

	records := buf.Push([]byte("X65.0,6"))
	assert.Empty(t, records)
	assert.Equal(t, 7, buf.Len())

	records = buf.Push([]byte("4.3       Y1,0"))
	require.Len(t, records, 1)
	assert.Equal(t, "X65.0,64.3       ", string(records[0].Bytes()))
	assert.Equal(t, 4, buf.Len())
}

func TestPushEmptyChunk(t *testing.T) {
	buf := New()
	assert.Empty(t, buf.Push(nil))
	assert.Empty(t, buf.Push([]byte{}))
	assert.Zero(t, buf.Len())
}

func TestMalformedRecordDoesNotDisturbNeighbours(t *testing.T) {
	rec := func(s string) string {
		return s + string(bytes.Repeat([]byte{' '}, protocol.NotificationFrameSize-len(s)))
	}
	data := []byte(rec("X65.0,64.3") + rec("Xabc,1") + rec("C100.0"))

	buf := New()
	var decoded []protocol.Notification
	var failures int
	for _, c := range split(data, 5) {
		for _, r := range buf.Push(c) {
			n, err := protocol.Decode(r.Bytes())
			if err != nil {
				failures++
				continue
			}
			decoded = append(decoded, n)
		}
	}

	assert.Equal(t, 1, failures)
	assert.Equal(t, []protocol.Notification{
		protocol.Temp{Desired: 65.0, Current: 64.3},
		protocol.Boil{BoilTemperature: 100},
	}, decoded)
}

func TestReset(t *testing.T) {
	buf := New()
	buf.Push([]byte("X65"))
	require.Equal(t, 3, buf.Len())

	buf.Reset()
	assert.Zero(t, buf.Len())

	records := buf.Push(stream(1))
	require.Len(t, records, 1)
	assert.Equal(t, byte('X'), records[0][0])
}
