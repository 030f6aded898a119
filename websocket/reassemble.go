package websocket

import (
	"bytes"
	"context"
)

// MessageType identifies the opcode a complete, reassembled message
// started with: either OpText or OpBinary.
type MessageType Opcode

const (
	TextMessage   = MessageType(OpText)
	BinaryMessage = MessageType(OpBinary)
)

// Reassembler sits on top of Client.ReadFrame and reconstructs
// fragmented messages into complete payloads (RFC 6455 Section 5.4),
// auto-handling Ping/Pong/Close along the way. The frame codec itself
// stops at individual frames; Reassembler is the opt-in convenience
// layer most applications actually want to read against.
//
// A Reassembler is not safe for concurrent use, for the same reason a
// Client isn't: ReadMessage drives the single underlying ReadFrame
// call chain.
type Reassembler struct {
	client *Client

	// OnPing, if set, is invoked with a Ping frame's payload after
	// ReadMessage has already sent the auto-reply Pong. A nil OnPing
	// is fine; the auto-reply still happens.
	OnPing func(data []byte)
	// OnPong, if set, is invoked with a Pong frame's payload.
	OnPong func(data []byte)

	buf        bytes.Buffer
	fragType   Opcode
	inFragment bool
}

// NewReassembler wraps client with message-level reassembly.
func NewReassembler(client *Client) *Reassembler {
	return &Reassembler{client: client}
}

// ReadMessage reads frames from the underlying Client until a
// complete message (Text or Binary, possibly reassembled from
// Continuation fragments) is available, auto-replying to Ping with a
// Pong and silently absorbing Pong frames along the way.
// On Close it returns *ClosedError, after echoing the Close frame back
// per RFC 6455 Section 5.5.1 ("the endpoint receiving a Close must
// send a Close frame in response").
//
// The returned payload is a copy, safe to retain past the next
// ReadMessage call. Text messages are validated as UTF-8; an invalid
// payload marks the Client closed and yields a *ClosedError whose Code
// is CloseInvalidPayloadData. No Close frame is sent to the peer in
// that case.
func (r *Reassembler) ReadMessage(ctx context.Context) (MessageType, []byte, error) {
	for {
		f, err := r.client.ReadFrame(ctx)
		if err != nil {
			return 0, nil, err
		}

		switch f.Opcode {
		case OpPing:
			if err := r.client.SendPong(ctx, f.Data); err != nil {
				return 0, nil, err
			}
			if r.OnPing != nil {
				r.OnPing(f.Data)
			}
			continue

		case OpPong:
			if r.OnPong != nil {
				r.OnPong(f.Data)
			}
			continue

		case OpClose:
			code, reason := parseCloseFramePayload(f.Data)
			_ = r.client.SendClose(ctx, f.Data)
			r.client.closed = true
			return 0, nil, &ClosedError{Code: code, HasCode: len(f.Data) >= 2, Reason: reason}

		case OpText, OpBinary:
			if f.Fin {
				return r.completeUnfragmented(f)
			}
			r.inFragment = true
			r.fragType = f.Opcode
			r.buf.Reset()
			r.buf.Write(f.Data)

		case OpContinuation:
			if !r.inFragment {
				return 0, nil, protocolViolation("unexpected continuation frame")
			}
			r.buf.Write(f.Data)
			if f.Fin {
				r.inFragment = false
				return r.completeFragmented()
			}
		}
	}
}

func (r *Reassembler) completeUnfragmented(f Frame) (MessageType, []byte, error) {
	msgType := MessageType(f.Opcode)
	if msgType == TextMessage {
		if _, ok := ValidateUTF8(f.Data); !ok {
			return 0, nil, r.closeInvalidUTF8()
		}
	}
	out := make([]byte, len(f.Data))
	copy(out, f.Data)
	return msgType, out, nil
}

func (r *Reassembler) completeFragmented() (MessageType, []byte, error) {
	msgType := MessageType(r.fragType)
	payload := r.buf.Bytes()
	if msgType == TextMessage {
		if _, ok := ValidateUTF8(payload); !ok {
			return 0, nil, r.closeInvalidUTF8()
		}
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return msgType, out, nil
}

func (r *Reassembler) closeInvalidUTF8() error {
	r.client.closed = true
	return &ClosedError{Code: CloseInvalidPayloadData, HasCode: true, Reason: "invalid UTF-8 in text message"}
}

// parseCloseFramePayload extracts the status code and reason text
// from a Close frame's payload (RFC 6455 Section 5.5.1). An empty or
// 1-byte payload (the latter already rejected by ReadFrame) yields
// the zero CloseCode.
func parseCloseFramePayload(data []byte) (CloseCode, string) {
	if len(data) < 2 {
		return CloseCode{}, ""
	}
	code, err := ParseCloseCode(uint16(data[0])<<8 | uint16(data[1]))
	if err != nil {
		code = CloseCode{}
	}
	return code, string(data[2:])
}
