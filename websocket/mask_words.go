//go:build amd64 || arm64

package websocket

import "encoding/binary"

// maskWords XORs src against mask eight bytes at a time (a
// word-parallel, a.k.a. SWAR, XOR: the mask's 4-byte cycle repeats
// exactly twice per 64-bit word, so one binary.LittleEndian
// read-xor-write replaces eight of maskScalar's byte operations), then
// finishes any remaining tail one byte at a time. This plays the role
// the SSSE3/NEON 128-bit kernels play on CPUs that have them, without
// requiring hand-written architecture-specific assembly: Go's
// standard toolchain at this module's Go version has no stable SIMD
// intrinsics package, and no such package appears anywhere in the
// example corpus this module draws on. It is installed as maskVector
// by mask_amd64.go / mask_arm64.go only when the running CPU actually
// reports the relevant feature.
func maskWords(dst, src []byte, mask [4]byte) {
	var word [8]byte
	copy(word[:4], mask[:])
	copy(word[4:], mask[:])
	m := binary.LittleEndian.Uint64(word[:])

	n := len(src)
	chunks := n &^ 7 // n rounded down to a multiple of 8

	for i := 0; i < chunks; i += 8 {
		v := binary.LittleEndian.Uint64(src[i : i+8])
		binary.LittleEndian.PutUint64(dst[i:i+8], v^m)
	}

	for i := chunks; i < n; i++ {
		dst[i] = src[i] ^ mask[i&3]
	}
}
