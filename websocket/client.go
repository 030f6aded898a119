package websocket

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// headerLen is the size of a frame's fixed two-byte header, before any
// extended length field.
const headerLen = 2

// Client drives the receive and send sides of a single client-role
// WebSocket connection (RFC 6455) over a Stream. It owns no handshake
// logic: callers obtain a Stream already past the HTTP Upgrade (Dial
// does this for a net.Conn), and hand it to NewClient.
//
// A Client is not safe for concurrent ReadFrame calls: the receive
// path reuses a single buffer across calls without locking. Send*,
// WriteFrame and WriteControlFrame calls are serialised by an internal
// mutex around the shared write scratch buffer. Reading and writing
// concurrently from two goroutines is fine - they touch disjoint
// buffers.
type Client struct {
	// ID identifies this Client for logging and correlation across a
	// Pool; it has no protocol meaning.
	ID uuid.UUID

	stream Stream
	recv   *recvBuffer

	writeBuf []byte
	writeMu  sync.Mutex

	rng    rand.PCG
	rngMu  sync.Mutex
	closed bool
}

// NewClient builds a Client driving stream with the given Config. The
// caller is responsible for having already completed (or forgone,
// e.g. in tests) the WebSocket opening handshake on stream.
func NewClient(stream Stream, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		ID:       uuid.New(),
		stream:   stream,
		recv:     newRecvBuffer(cfg.ReadBufferCapacity),
		writeBuf: make([]byte, 0, cfg.WriteBufferCapacity),
		rng:      seededPCG(),
	}
}

func seededPCG() rand.PCG {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand.Read on the stdlib reader only fails if the OS
		// entropy source is broken beyond recovery; there is no
		// sensible fallback path, so this mirrors the same
		// unconditional panic crypto/rand's own helpers use.
		panic("websocket: failed to seed mask RNG: " + err.Error())
	}
	return *rand.NewPCG(
		binary.LittleEndian.Uint64(seed[0:8]),
		binary.LittleEndian.Uint64(seed[8:16]),
	)
}

// nextMask draws a fresh 4-byte client masking key (RFC 6455 Section
// 5.3 requires one chosen "in a manner that cannot be predicted by
// end-hosts that don't have access to the masking key" for every
// frame a client sends).
func (c *Client) nextMask() [4]byte {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	var mask [4]byte
	binary.LittleEndian.PutUint32(mask[:], uint32(c.rng.Uint64()))
	return mask
}

// ReadFrame reads and returns the next frame from the connection,
// validating it against the receive rules of RFC 6455 Section 5.2,
// 5.4, and 5.5. The returned Frame's Data aliases the
// Client's internal receive buffer and is only valid until the next
// call to ReadFrame; callers that need to retain it must copy.
//
// ReadFrame never sends a Close frame itself, even for a
// ProtocolViolationError or an incoming OpClose: that policy decision
// (and any reply) belongs to the caller.
func (c *Client) ReadFrame(ctx context.Context) (Frame, error) {
	if c.closed {
		return Frame{}, &ClosedError{}
	}

	c.recv.compactIfNeeded()

	if err := c.ensureRead(ctx, headerLen); err != nil {
		return Frame{}, err
	}

	header := c.recv.take(headerLen)
	b0, b1 := header[0], header[1]

	fin := b0&0x80 != 0
	rsv := b0 & 0x70
	opcode, err := ParseOpcode(b0 & 0x0F)
	if err != nil {
		return Frame{}, protocolViolation("invalid opcode")
	}
	masked := b1&0x80 != 0
	length := uint64(b1 & 0x7F)

	if rsv != 0 {
		return Frame{}, protocolViolation("reserved bits must be zero")
	}
	if masked {
		return Frame{}, protocolViolation("server-to-client frames must not be masked")
	}

	if opcode.IsReserved() {
		return Frame{}, protocolViolation("use of reserved opcode")
	}

	if opcode.IsControl() {
		if length > len7Bit {
			return Frame{}, protocolViolation("control frame payload exceeds 125 bytes")
		}
		if !fin {
			return Frame{}, protocolViolation("control frame must not be fragmented")
		}
		if opcode == OpClose && length == 1 {
			return Frame{}, protocolViolation("close frame with a truncated status code")
		}
	} else {
		length, err = c.readExtendedLength(ctx, length)
		if err != nil {
			return Frame{}, err
		}
	}

	if err := c.ensureRead(ctx, int(length)); err != nil {
		return Frame{}, err
	}
	data := c.recv.take(int(length))

	return Frame{Fin: fin, Opcode: opcode, Data: data}, nil
}

// readExtendedLength resolves the 16-bit or 64-bit extended length
// field that follows the base header when the 7-bit length is 126 or
// 127 (RFC 6455 Section 5.2). length is the raw 7-bit field value.
func (c *Client) readExtendedLength(ctx context.Context, length uint64) (uint64, error) {
	switch length {
	case len16Bit:
		if err := c.ensureRead(ctx, 2); err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(c.recv.take(2))), nil
	case len64Bit:
		if err := c.ensureRead(ctx, 8); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(c.recv.take(8)), nil
	default:
		return length, nil
	}
}

// ensureRead grows the receive buffer until at least n unparsed bytes
// are available, asking the stream for up to chunkSize bytes per read.
func (c *Client) ensureRead(ctx context.Context, n int) error {
	return c.recv.ensureLen(n, func(buf []byte, chunk int) ([]byte, int, error) {
		return c.stream.ReadExtend(ctx, buf, chunk)
	})
}

// SendPing writes a Ping control frame carrying data, which must be
// no more than 125 bytes (RFC 6455 Section 5.5.2).
func (c *Client) SendPing(ctx context.Context, data []byte) error {
	return c.WriteControlFrame(ctx, Frame{Fin: true, Opcode: OpPing, Data: data})
}

// SendPong writes a Pong control frame carrying data, which must be no
// more than 125 bytes (RFC 6455 Section 5.5.3). A Pong sent
// unsolicited, or in reply to the most recent Ping, are both valid
// per the RFC; Client applies no policy of its own.
func (c *Client) SendPong(ctx context.Context, data []byte) error {
	return c.WriteControlFrame(ctx, Frame{Fin: true, Opcode: OpPong, Data: data})
}

// SendBinary writes a single unfragmented Binary data frame.
func (c *Client) SendBinary(ctx context.Context, data []byte) error {
	return c.WriteFrame(ctx, Frame{Fin: true, Opcode: OpBinary, Data: data})
}

// SendText writes a single unfragmented Text data frame. data must
// already be valid UTF-8; Client does not validate outgoing payloads
// (RFC 6455 places that obligation on the sender, not the receiver).
func (c *Client) SendText(ctx context.Context, data []byte) error {
	return c.WriteFrame(ctx, Frame{Fin: true, Opcode: OpText, Data: data})
}

// SendClose writes a Close control frame. data, if non-empty, must
// begin with a 2-byte big-endian CloseCode (RFC 6455 Section 5.5.1);
// ProtocolErrorPayload is provided as a ready-made payload for the
// most common case.
func (c *Client) SendClose(ctx context.Context, data []byte) error {
	return c.WriteControlFrame(ctx, Frame{Fin: true, Opcode: OpClose, Data: data})
}

// WriteFrame encodes and writes frame using Client's shared scratch
// buffer, freeing it for reuse by the next Send* or WriteFrame call
// once the write completes (successfully or not).
func (c *Client) WriteFrame(ctx context.Context, frame Frame) error {
	return c.write(ctx, frame, Frame.Encode)
}

// WriteControlFrame is WriteFrame specialised for control frames: it
// assumes frame.Opcode is a control opcode and len(frame.Data) <= 125,
// and skips the length-class branch Encode otherwise needs.
func (c *Client) WriteControlFrame(ctx context.Context, frame Frame) error {
	return c.write(ctx, frame, Frame.EncodeControl)
}

func (c *Client) write(ctx context.Context, frame Frame, encode func(Frame, []byte, [4]byte) []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	dst := c.writeBuf[:0]
	dst = encode(frame, dst, c.nextMask())
	err := c.stream.WriteAll(ctx, dst)
	c.writeBuf = dst[:0]
	return err
}
