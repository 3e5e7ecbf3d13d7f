package mount

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/saviobatista/pointing-sim/internal/parser"
)

// Client is the controller side of the mount protocol: one request, then one
// reply, in sequence over a single connection.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to the mount server with a single attempt.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mount server: %w", err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// roundTrip sends one request line and parses the single reply line.
func (c *Client) roundTrip(req *parser.MountRequest) (*parser.MountReply, error) {
	if _, err := fmt.Fprintf(c.conn, "%s\n", parser.FormatMountRequest(req)); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	return parser.ParseMountReply(line)
}

// GetPosition returns the current axis positions in degrees.
func (c *Client) GetPosition() (axis1, axis2 float64, err error) {
	reply, err := c.roundTrip(&parser.MountRequest{Kind: parser.ReqGetPosition})
	if err != nil {
		return 0, 0, err
	}
	switch reply.Kind {
	case parser.ReplyPosition:
		return reply.Axis1, reply.Axis2, nil
	case parser.ReplyError:
		return 0, 0, fmt.Errorf("mount server error: %s", reply.Message)
	default:
		return 0, 0, fmt.Errorf("unexpected reply to GetPosition: %+v", reply)
	}
}

// Slew commands target angular velocities for both axes, in °/s.
func (c *Client) Slew(axis1, axis2 float64) error {
	reply, err := c.roundTrip(&parser.MountRequest{Kind: parser.ReqSlew, Axis1: axis1, Axis2: axis2})
	if err != nil {
		return err
	}
	return checkOK(reply, "Slew")
}

// Stop commands both axes to rest.
func (c *Client) Stop() error {
	reply, err := c.roundTrip(&parser.MountRequest{Kind: parser.ReqStop})
	if err != nil {
		return err
	}
	return checkOK(reply, "Stop")
}

func checkOK(reply *parser.MountReply, verb string) error {
	switch reply.Kind {
	case parser.ReplyOK:
		return nil
	case parser.ReplyError:
		return fmt.Errorf("mount server error: %s", reply.Message)
	default:
		return fmt.Errorf("unexpected reply to %s: %+v", verb, reply)
	}
}
