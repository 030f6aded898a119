package websocket

import (
	"encoding/binary"
	"fmt"
	"io"
)

// errUnexpectedEOF is returned by recvBuffer.ensureLen when the
// stream ends before the requested number of bytes accumulate. It
// wraps the stdlib sentinel so callers can errors.Is(err,
// io.ErrUnexpectedEOF) rather than match against a parallel one.
var errUnexpectedEOF = fmt.Errorf("websocket: ensure read: %w", io.ErrUnexpectedEOF)

// ProtocolErrorPayload is the two big-endian bytes of CloseProtocolError
// (1002), exposed so callers that choose to send a Close frame after a
// ProtocolViolation (the codec itself never sends one) don't need to
// re-derive the encoding.
var ProtocolErrorPayload = func() [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], CloseProtocolError.Uint16())
	return b
}()

// ProtocolViolationError reports that the peer broke one of the
// framing rules in RFC 6455 Section 5.2/5.4/5.5. It is
// fatal and non-recoverable: the connection must be closed with
// CloseProtocolError; ReadFrame does not send that Close frame
// itself, leaving the decision of whether (and how) to do so to the
// caller's policy.
type ProtocolViolationError struct {
	// Reason is a short, static, human-readable description of which
	// rule was broken.
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	return "websocket: protocol violation: " + e.Reason
}

func protocolViolation(reason string) error {
	return &ProtocolViolationError{Reason: reason}
}

// ClosedError is returned by Reassembler.ReadMessage when it processes
// a Close frame or rejects a Text message as invalid UTF-8; both mark
// the Client closed, and every later ReadFrame on it then returns a
// ClosedError without a code. ReadFrame alone does not mark the Client
// closed when it returns a Close frame, and Send*, WriteFrame and
// WriteControlFrame do not check for closure: they keep writing to the
// stream.
type ClosedError struct {
	// Code is the peer's declared close code, or the zero CloseCode
	// if the Close frame carried no payload.
	Code CloseCode
	// HasCode reports whether Code was actually present on the wire
	// (an empty Close frame carries no code).
	HasCode bool
	// Reason is the peer's declared close reason text, if any.
	Reason string
}

func (e *ClosedError) Error() string {
	if !e.HasCode {
		return "websocket: connection closed"
	}
	if e.Reason == "" {
		return fmt.Sprintf("websocket: connection closed: %s", e.Code)
	}
	return fmt.Sprintf("websocket: connection closed: %s: %s", e.Code, e.Reason)
}
