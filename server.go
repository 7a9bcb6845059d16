package lrucached

import (
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/skipor/lrucached/log"
)

const DefaultAddr = ":11211"

var ErrServerClosed = errors.New("lrucached: server closed")

type Server struct {
	Addr string
	ConnMeta
	Log         log.Logger
	connCounter int64

	lock     sync.Mutex
	listener net.Listener
	closed   bool
}

// ConnMeta is data shared between connections.
type ConnMeta struct {
	Cache       Cache
	MaxItemSize int
}

func (s *Server) ListenAndServe() error {
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on l until Close. It always returns non nil error.
// After Close, ErrServerClosed is returned.
func (s *Server) Serve(l net.Listener) error {
	s.init()
	if err := s.track(l); err != nil {
		l.Close()
		return err
	}
	var tempDelay time.Duration // How long to sleep on accept failure.
	for {
		c, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if ne, ok := err.(net.Error); !(ok && ne.Temporary()) {
				return err
			}
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if max := 1 * time.Second; tempDelay > max {
				tempDelay = max
			}
			s.Log.Errorf("lrucached: Accept error: %v; retrying in %v", err, tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0
		go s.newConn(c).serve()
	}
}

// Close stops accepting new connections. Served connections are not interrupted.
func (s *Server) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.closed = true
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) track(l net.Listener) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	s.listener = l
	return nil
}

func (s *Server) isClosed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}

func (s *Server) newConn(c net.Conn) *conn {
	conn := newConn(s.Log.WithFields(log.Fields{"conn": s.connCounter}), &s.ConnMeta, c)
	s.connCounter++
	return conn
}

func (s *Server) init() {
	if s.Log == nil {
		s.Log = log.NewLogger(log.ErrorLevel, os.Stderr)
	}
	if s.Cache == nil {
		s.Log.Panic("Server cache is not set.")
	}
	if s.MaxItemSize == 0 {
		s.MaxItemSize = DefaultMaxItemSize
	}
}
