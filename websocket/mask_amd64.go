package websocket

import "golang.org/x/sys/cpu"

// maskWords is installed as the vectorised kernel on x86-64 CPUs that
// report SSSE3 support; maskScalar remains the fallback otherwise.
func init() {
	if cpu.X86.HasSSSE3 {
		maskVector = maskWords
	}
}
