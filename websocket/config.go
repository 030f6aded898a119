package websocket

// Config controls the initial capacity of a Client's read and write
// scratch buffers. Both grow past these values as needed; they only
// set the first allocation, sized to avoid early reallocation for the
// common case.
type Config struct {
	// ReadBufferCapacity is the initial capacity of the receive
	// buffer ReadFrame accumulates frame bytes into.
	ReadBufferCapacity int
	// WriteBufferCapacity is the initial capacity of the scratch
	// buffer Send* and WriteFrame encode outgoing frames into.
	WriteBufferCapacity int
}

// DefaultConfig returns the Config used by NewClient and Dial when
// none is supplied.
func DefaultConfig() Config {
	return Config{
		ReadBufferCapacity:  128 * 1024,
		WriteBufferCapacity: 128 * 1024,
	}
}

func (c Config) withDefaults() Config {
	if c.ReadBufferCapacity <= 0 {
		c.ReadBufferCapacity = DefaultConfig().ReadBufferCapacity
	}
	if c.WriteBufferCapacity <= 0 {
		c.WriteBufferCapacity = DefaultConfig().WriteBufferCapacity
	}
	return c
}
