// Package dispatch runs the TCP listener and per-connection worker that
// demultiplex framed requests onto the target actor's mailbox, transferring
// ownership of the live connection so the actor itself writes the response.
package dispatch

import (
	"fmt"
	"net"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/logger"
	"github.com/brianmakesthings/cautious-axela/internal/mailbox"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

// Server owns the listener and the routing table from variant to actor
// mailbox (§4.3).
type Server struct {
	listener net.Listener
	routes   map[proto.Variant]*mailbox.Mailbox[actor.Command]
	log      *zap.Logger
}

// New binds addr and returns a Server with no routes registered yet.
func New(addr string, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dispatch: listen %s: %w", addr, err)
	}
	return &Server{listener: ln, routes: make(map[proto.Variant]*mailbox.Mailbox[actor.Command]), log: log}, nil
}

// Route registers the mailbox that should receive every request for
// variant. Registering a variant that is already routed replaces its
// previous mailbox; each actor registers all of its own variants once at
// startup.
func (s *Server) Route(variant proto.Variant, mb *mailbox.Mailbox[actor.Command]) {
	s.routes[variant] = mb
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts connections until the listener is closed, spawning one
// goroutine per connection - the idiomatic equivalent of the spec's
// "short-lived worker thread per accepted connection"; Go's scheduler
// multiplexes these goroutines onto OS threads itself.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return fmt.Errorf("dispatch: accept: %w", err)
		}
		go s.handleConnection(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) handleConnection(conn net.Conn) {
	traceID := uuid.NewString()
	log := logger.WithConnection(s.log, traceID)

	req, err := proto.ReadRequest(conn)
	if err != nil {
		log.Warn("malformed request, dropping connection", zap.Error(err))
		conn.Close()
		return
	}

	mb, ok := s.routes[req.Variant]
	if !ok {
		log.Error("no route for variant, dropping connection", zap.String("variant", string(req.Variant)))
		conn.Close()
		return
	}

	log.Debug("dispatching request", zap.String("variant", string(req.Variant)), zap.String("id", req.ID.String()))
	mb.Send(actor.Command{Request: req, Conn: conn})
}
