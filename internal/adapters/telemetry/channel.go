package telemetry

import (
	"io"
	"sync"

	"github.com/vito/progrock"
)

// channelCapacity bounds how many pending updates a slow or absent consumer
// can hold up. Overflowing updates are dropped, never blocking the pipeline.
const channelCapacity = 256

// Channel is a progrock.Writer whose updates can be read back one at a time.
// It bridges the recorder to a consumer such as the terminal UI.
type Channel struct {
	mu     sync.Mutex
	ch     chan *progrock.StatusUpdate
	closed bool
}

// NewChannel creates a Channel ready for one writer and one reader.
func NewChannel() *Channel {
	return &Channel{
		ch: make(chan *progrock.StatusUpdate, channelCapacity),
	}
}

// WriteStatus implements progrock.Writer.
func (c *Channel) WriteStatus(update *progrock.StatusUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- update:
	default:
		// Consumer is not keeping up. Progress display is advisory, the
		// pipeline must not stall on it.
	}
	return nil
}

// Read returns the next pending update, blocking until one arrives. After
// Close it drains the backlog and then reports io.EOF.
func (c *Channel) Read() (*progrock.StatusUpdate, error) {
	update, ok := <-c.ch
	if !ok {
		return nil, io.EOF
	}
	return update, nil
}

// Close ends the stream. Pending updates remain readable.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}
