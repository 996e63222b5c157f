// Package server speaks the memcached-style text protocol of boardd on top
// of a key resolver.
package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ptt/boardd/big5"
)

const (
	Version = "0.0.2"

	DefaultMaxLineLength = 64 * 1024
)

// Resolver appends the value of one key to w. On error nothing is appended.
type Resolver interface {
	Answer(w *bytes.Buffer, key string) error
}

type Config struct {
	// Converter turns Big5 values into UTF-8. Nil sends values untouched.
	Converter *big5.Converter
	// MaxLineLength bounds a request line, including its line ending.
	MaxLineLength int
	// IdleTimeout closes connections that send nothing for that long. Zero
	// disables it.
	IdleTimeout time.Duration
}

type Server struct {
	resolver Resolver
	conf     Config
	logger   *zap.Logger

	conns sync.WaitGroup
}

func New(r Resolver, conf Config, logger *zap.Logger) *Server {
	if conf.MaxLineLength <= 0 {
		conf.MaxLineLength = DefaultMaxLineLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		resolver: r,
		conf:     conf,
		logger:   logger,
	}
}

// Serve accepts connections on l until ctx is cancelled or l fails, then
// closes l and every connection it accepted and waits for them to finish.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	s.logger.Info("listening", zap.Stringer("addr", l.Addr()))

	var err error
	var tempDelay time.Duration
	for {
		var c net.Conn
		c, err = l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				err = nil
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				tempDelay = backoff(tempDelay)
				s.logger.Warn("accept", zap.Error(err), zap.Duration("retry", tempDelay))
				time.Sleep(tempDelay)
				continue
			}
			s.logger.Error("accept", zap.Error(err))
			break
		}
		tempDelay = 0

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.serveConn(ctx, c)
		}()
	}

	cancel()
	l.Close()
	s.conns.Wait()
	return err
}

func backoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if max := time.Second; d > max {
		d = max
	}
	return d
}
