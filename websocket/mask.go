package websocket

// maskVector is the platform-specific vectorised masking kernel,
// installed by mask_amd64.go or mask_arm64.go's init when the running
// CPU supports it. It is nil on every other architecture, and on
// amd64/arm64 CPUs lacking the feature, in which case maskXOR always
// falls back to maskScalar.
//
// Every installed implementation MUST be byte-identical to maskScalar
// for all inputs and MUST only
// be invoked for len(src) >= 16.
var maskVector func(dst, src []byte, mask [4]byte)

// maskXOR applies the WebSocket masking algorithm (RFC 6455 Section
// 5.3): transformed[i] = original[i] XOR mask[i%4]. dst and src may be
// the same slice. It dispatches to the vectorised kernel for payloads
// of at least 16 bytes when one is available for the running CPU,
// and to the scalar kernel otherwise.
func maskXOR(dst, src []byte, mask [4]byte) {
	if len(src) >= 16 && maskVector != nil {
		maskVector(dst, src, mask)
		return
	}
	maskScalar(dst, src, mask)
}

// maskScalar is the correctness fallback: one XOR per byte. It is
// always correct and is what every vectorised kernel is checked
// against.
func maskScalar(dst, src []byte, mask [4]byte) {
	for i, b := range src {
		dst[i] = b ^ mask[i&3]
	}
}
