package mount

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/saviobatista/pointing-sim/internal/parser"
)

// Server serves the mount control protocol: line-delimited requests with one
// reply per request. One client is handled at a time; when it disconnects the
// server accepts the next one.
type Server struct {
	mount    *Mount
	ln       net.Listener
	stopChan chan struct{}
}

// NewServer binds the listening socket. A bind failure is an environment
// error; callers are expected to treat it as fatal.
func NewServer(m *Mount, addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind mount server on %s: %w", addr, err)
	}
	return &Server{
		mount:    m,
		ln:       ln,
		stopChan: make(chan struct{}),
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve accepts clients sequentially and handles their requests until Close
// is called.
func (s *Server) Serve() {
	for {
		log.Printf("mount: waiting for client on %s", s.Addr())
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return
			default:
				log.Printf("mount: accept error: %v", err)
				continue
			}
		}
		log.Printf("mount: client connected from %s", conn.RemoteAddr())
		s.handle(conn)
	}
}

// Close stops the accept loop and releases the listening socket.
func (s *Server) Close() error {
	close(s.stopChan)
	return s.ln.Close()
}

// handle runs the request/reply loop for one client. Malformed or unsupported
// lines are logged and skipped; the connection stays open. A write failure
// means the client is gone and ends the session.
func (s *Server) handle(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("mount: error closing client connection: %v", err)
		}
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		req, err := parser.ParseMountRequest(scanner.Text())
		if err != nil {
			log.Printf("mount: %v", err)
			continue
		}

		var reply string
		switch req.Kind {
		case parser.ReqGetPosition:
			state := s.mount.Get()
			reply = parser.FormatPositionReply(state.Axis1Pos, state.Axis2Pos)

		case parser.ReqSlew:
			s.mount.Slew(req.Axis1, req.Axis2)
			reply = parser.FormatOKReply()

		case parser.ReqStop:
			s.mount.Stop()
			reply = parser.FormatOKReply()
		}

		if _, err := fmt.Fprintf(conn, "%s\n", reply); err != nil {
			log.Printf("mount: client write failed, closing session: %v", err)
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Printf("mount: client read failed: %v", err)
	}
	log.Printf("mount: client disconnected")
}
