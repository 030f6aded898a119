package websocket

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStream is a Stream backed by an in-memory byte queue, letting
// tests drive ReadFrame from fixed wire bytes without a real network
// pipe. Each ReadExtend hands over up to chunk queued bytes.
type memStream struct {
	in  []byte
	out bytes.Buffer
}

func (s *memStream) ReadExtend(_ context.Context, buf []byte, chunk int) ([]byte, int, error) {
	n := chunk
	if n > len(s.in) {
		n = len(s.in)
	}
	buf = append(buf, s.in[:n]...)
	s.in = s.in[n:]
	return buf, n, nil
}

func (s *memStream) WriteAll(_ context.Context, buf []byte) error {
	s.out.Write(buf)
	return nil
}

func newTestClient(in []byte) (*Client, *memStream) {
	s := &memStream{in: in}
	c := NewClient(s, Config{ReadBufferCapacity: 64, WriteBufferCapacity: 64})
	return c, s
}

func serverFrame(fin bool, op Opcode, data []byte) []byte {
	// Server-to-client frames are never masked; build the header by
	// hand rather than reusing Frame.Encode, which always masks.
	var hdr []byte
	hdr = append(hdr, finBit(fin)|op.Byte())
	switch {
	case len(data) <= len7Bit:
		hdr = append(hdr, byte(len(data)))
	case len(data) <= 0xFFFF:
		hdr = append(hdr, len16Bit, byte(len(data)>>8), byte(len(data)))
	default:
		hdr = append(hdr, len64Bit, 0, 0, 0, 0, byte(len(data)>>24), byte(len(data)>>16), byte(len(data)>>8), byte(len(data)))
	}
	return append(hdr, data...)
}

func TestClient_ReadFrame_TextRoundtrip(t *testing.T) {
	wire := serverFrame(true, OpText, []byte("hello"))
	c, _ := newTestClient(wire)

	f, err := c.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OpText, f.Opcode)
	assert.True(t, f.Fin)
	assert.Equal(t, "hello", string(f.Data))
}

func TestClient_ReadFrame_MultipleFrames(t *testing.T) {
	wire := append(serverFrame(true, OpText, []byte("one")), serverFrame(true, OpBinary, []byte("two"))...)
	c, _ := newTestClient(wire)

	ctx := context.Background()
	f1, err := c.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one", string(f1.Data))

	f2, err := c.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", string(f2.Data))
}

func TestClient_ReadFrame_ExtendedLength16(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 300)
	c, _ := newTestClient(serverFrame(true, OpBinary, data))

	f, err := c.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data, f.Data)
}

func TestClient_ReadFrame_RejectsReservedBits(t *testing.T) {
	wire := []byte{0x80 | 0x40 | byte(OpText), 0x00}
	c, _ := newTestClient(wire)

	_, err := c.ReadFrame(context.Background())
	var pv *ProtocolViolationError
	require.ErrorAs(t, err, &pv)
}

func TestClient_ReadFrame_RejectsMaskedServerFrame(t *testing.T) {
	wire := []byte{0x80 | byte(OpText), 0x80, 0, 0, 0, 0}
	c, _ := newTestClient(wire)

	_, err := c.ReadFrame(context.Background())
	var pv *ProtocolViolationError
	require.ErrorAs(t, err, &pv)
}

func TestClient_ReadFrame_RejectsReservedOpcode(t *testing.T) {
	wire := []byte{0x80 | 0x03, 0x00}
	c, _ := newTestClient(wire)

	_, err := c.ReadFrame(context.Background())
	var pv *ProtocolViolationError
	require.ErrorAs(t, err, &pv)
}

func TestClient_ReadFrame_RejectsFragmentedControlFrame(t *testing.T) {
	wire := []byte{byte(OpPing), 0x00} // FIN clear
	c, _ := newTestClient(wire)

	_, err := c.ReadFrame(context.Background())
	var pv *ProtocolViolationError
	require.ErrorAs(t, err, &pv)
}

func TestClient_ReadFrame_RejectsOversizedControlFrame(t *testing.T) {
	wire := []byte{0x80 | byte(OpPing), 126}
	c, _ := newTestClient(wire)

	_, err := c.ReadFrame(context.Background())
	var pv *ProtocolViolationError
	require.ErrorAs(t, err, &pv)
}

func TestClient_ReadFrame_RejectsTruncatedCloseReason(t *testing.T) {
	wire := []byte{0x80 | byte(OpClose), 1, 0x03}
	c, _ := newTestClient(wire)

	_, err := c.ReadFrame(context.Background())
	var pv *ProtocolViolationError
	require.ErrorAs(t, err, &pv)
}

func TestClient_ReadFrame_EOFMidHeader(t *testing.T) {
	c, _ := newTestClient([]byte{0x80})

	_, err := c.ReadFrame(context.Background())
	require.Error(t, err)
}

func TestClient_SendText_WritesMaskedFrame(t *testing.T) {
	c, s := newTestClient(nil)

	err := c.SendText(context.Background(), []byte("hi"))
	require.NoError(t, err)

	out := s.out.Bytes()
	require.Len(t, out, 6+2)
	assert.Equal(t, 0x80|byte(OpText), out[0])
	assert.NotZero(t, out[1]&0x80, "client frame must set the MASK bit")

	mask := [4]byte{out[2], out[3], out[4], out[5]}
	unmasked := make([]byte, 2)
	maskXOR(unmasked, out[6:], mask)
	assert.Equal(t, "hi", string(unmasked))
}

func TestClient_SendPing_UsesControlEncoding(t *testing.T) {
	c, s := newTestClient(nil)

	err := c.SendPing(context.Background(), []byte("ping"))
	require.NoError(t, err)

	out := s.out.Bytes()
	assert.Equal(t, byte(OpPing)|0x80, out[0])
	assert.Equal(t, byte(0x80|4), out[1])
}

func TestClient_ReadFrame_ClosedClientRejectsFurtherReads(t *testing.T) {
	c, _ := newTestClient(serverFrame(true, OpText, []byte("x")))
	c.closed = true

	_, err := c.ReadFrame(context.Background())
	var ce *ClosedError
	require.ErrorAs(t, err, &ce)
}

func TestClient_NextMask_VariesAcrossCalls(t *testing.T) {
	c, _ := newTestClient(nil)

	m1 := c.nextMask()
	m2 := c.nextMask()
	assert.NotEqual(t, m1, m2, "nextMask returned the same key twice in a row (statistically near-impossible)")
}
