// Package capture maintains the client side of the telemetry stream: a TCP
// connection to the target simulator that is retried until it succeeds and
// re-established when it drops, delivering raw lines on a channel.
package capture

import (
	"bufio"
	"log"
	"net"
	"sync"
	"time"

	"github.com/saviobatista/pointing-sim/internal/types"
)

// ConnectTimeout bounds each connection attempt; failed attempts are retried
// immediately, with no backoff.
const ConnectTimeout = 50 * time.Millisecond

// Capture reads telemetry lines from one source address.
type Capture struct {
	source   string
	lines    chan types.TelemetryLine
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu   sync.Mutex
	conn net.Conn
}

// New creates a capture for the given source address.
func New(source string) *Capture {
	return &Capture{
		source:   source,
		lines:    make(chan types.TelemetryLine, 1000),
		stopChan: make(chan struct{}),
	}
}

// Start launches the connect/read loop.
func (c *Capture) Start() {
	c.wg.Add(1)
	go c.connectLoop()
}

// Lines returns the channel of received raw lines. It is closed after Stop.
func (c *Capture) Lines() <-chan types.TelemetryLine {
	return c.lines
}

// Stop tears the connection down and closes the line channel.
func (c *Capture) Stop() {
	close(c.stopChan)
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
	c.wg.Wait()
	close(c.lines)
}

func (c *Capture) connectLoop() {
	defer c.wg.Done()

	attempts := 0
	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		conn, err := net.DialTimeout("tcp", c.source, ConnectTimeout)
		if err != nil {
			attempts++
			if attempts == 1 {
				log.Printf("capture: waiting for %s: %v", c.source, err)
			}
			continue
		}

		log.Printf("capture: connected to %s after %d attempt(s)", c.source, attempts+1)
		attempts = 0

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.readLines(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}
}

// readLines forwards lines until the connection drops or Stop is called.
func (c *Capture) readLines(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := types.TelemetryLine{
			Raw:       scanner.Text(),
			Timestamp: time.Now().UTC(),
			Source:    c.source,
		}
		select {
		case c.lines <- line:
		case <-c.stopChan:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case <-c.stopChan:
		default:
			log.Printf("capture: read error from %s: %v", c.source, err)
		}
	}
}
