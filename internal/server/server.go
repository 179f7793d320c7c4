// Package server provides the TCP accept loop and connection lifecycle for
// the broker: one worker goroutine per accepted connection, spawned from a
// single-threaded accept loop (spec.md §5).
package server

import (
	"fmt"
	"net"
	"sync"

	"github.com/moband/kafka-broker/internal/kafka"
	"github.com/moband/kafka-broker/internal/metadata"
	"github.com/moband/kafka-broker/pkg/logger"
)

// Config holds the server's listen address. CLI flags and environment
// parsing are explicitly out of scope (spec.md §1, §6); callers build this
// struct directly.
type Config struct {
	Host string
	Port int
}

// Server is the broker's TCP front end.
type Server struct {
	config     Config
	logger     *logger.Logger
	listener   net.Listener
	dispatcher *kafka.Dispatcher
	wg         sync.WaitGroup
	clients    map[string]net.Conn
	clientsMu  sync.Mutex
	shutdown   chan struct{}
}

// New creates a Server that will dispatch requests against catalog.
func New(config Config, catalog *metadata.Catalog, log *logger.Logger) *Server {
	return &Server{
		config:     config,
		logger:     log.WithComponent("server"),
		dispatcher: kafka.NewDispatcher(catalog, log),
		clients:    make(map[string]net.Conn),
		shutdown:   make(chan struct{}),
	}
}

// Start binds the listen address and begins accepting connections in a
// background goroutine. It returns once the listener is bound.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: bind %s: %w", addr, err)
	}

	s.listener = listener
	s.logger.Info("listening on %s", addr)

	s.wg.Add(1)
	go s.acceptConnections()

	return nil
}

// Stop closes the listener and every open connection, then waits for all
// connection workers to return.
func (s *Server) Stop() error {
	close(s.shutdown)

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Error("closing listener: %s", err)
		}
	}

	s.clientsMu.Lock()
	for _, conn := range s.clients {
		if err := conn.Close(); err != nil {
			s.logger.Error("closing client connection: %s", err)
		}
	}
	s.clientsMu.Unlock()

	s.wg.Wait()
	s.logger.Info("stopped")
	return nil
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		select {
		case <-s.shutdown:
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				s.logger.Error("accept: %s", err)
				continue
			}
		}

		addr := conn.RemoteAddr().String()
		s.registerClient(addr, conn)

		s.wg.Add(1)
		go s.handleConnection(addr, conn)
	}
}

func (s *Server) registerClient(addr string, conn net.Conn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[addr] = conn
	s.logger.Debug("new connection from %s", addr)
}

func (s *Server) unregisterClient(addr string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, addr)
	s.logger.Debug("connection closed: %s", addr)
}

func (s *Server) handleConnection(addr string, conn net.Conn) {
	defer func() {
		conn.Close()
		s.unregisterClient(addr)
		s.wg.Done()
	}()

	kafka.NewFramer(conn, s.dispatcher, s.logger).Run()
}
