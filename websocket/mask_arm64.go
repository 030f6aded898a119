package websocket

import "golang.org/x/sys/cpu"

// maskWords is installed as the vectorised kernel on AArch64 CPUs
// that report ASIMD support; maskScalar remains the fallback otherwise.
func init() {
	if cpu.ARM64.HasASIMD {
		maskVector = maskWords
	}
}
