// Package websocket implements the client side of RFC 6455 WebSocket
// framing for real-time bidirectional communication.
//
// This package turns an already-established, ordered, reliable byte
// stream (typically TCP + optional TLS, after an HTTP/1.1 Upgrade
// handshake) into a framed, validated, full-duplex message channel.
// It provides:
//   - Opcode and CloseCode value types (RFC 6455 Section 5.2, 7.4).
//   - A zero-copy Frame view and its wire encoding, including masked
//     payload XOR with a scalar fallback and a vectorised fast path
//     (RFC 6455 Section 5.2, 5.3).
//   - Client, an asynchronous-style frame reader/writer over any
//     Stream, with backpressure-aware receive-buffer management
//     (RFC 6455 Section 5.2).
//
// Out of scope for the core: TCP/TLS establishment and the HTTP
// Upgrade handshake (see Dial for optional glue), the server role
// (accepting handshakes, unmasking client frames), permessage-deflate
// and other extensions, auto-fragmentation of large messages,
// auto-ping/pong keepalive scheduling, and reassembly of fragmented
// messages into whole messages (see Reassembler for an optional
// caller-side helper).
//
// RFC Reference: https://datatracker.ietf.org/doc/html/rfc6455
package websocket
