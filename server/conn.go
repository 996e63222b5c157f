package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	replyEnd         = "END\r\n"
	replyError       = "ERROR\r\n"
	replyUnknown     = "SERVER_ERROR Not implemented\r\n"
	replyLineTooLong = "CLIENT_ERROR line too long\r\n"
)

type conn struct {
	s      *Server
	rwc    net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	logger *zap.Logger

	// value is reused across keys.
	value bytes.Buffer
}

func (s *Server) serveConn(ctx context.Context, rwc net.Conn) {
	c := &conn{
		s:      s,
		rwc:    rwc,
		r:      bufio.NewReaderSize(rwc, s.conf.MaxLineLength),
		w:      bufio.NewWriter(rwc),
		logger: s.logger.With(zap.Stringer("remote", rwc.RemoteAddr())),
	}
	stop := context.AfterFunc(ctx, func() { rwc.Close() })
	defer stop()
	defer rwc.Close()

	c.logger.Debug("connection opened")
	err := c.serve()
	c.logger.Debug("connection closed", zap.Error(err))
}

// serve runs the command loop. It returns nil when the peer quits or hangs
// up between commands.
func (c *conn) serve() error {
	for {
		if d := c.s.conf.IdleTimeout; d > 0 {
			c.rwc.SetReadDeadline(time.Now().Add(d))
		}
		line, err := c.r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			c.w.WriteString(replyLineTooLong)
			c.w.Flush()
			return err
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if !c.process(line) {
			return c.w.Flush()
		}
		// Replies to pipelined commands go out together.
		if c.r.Buffered() == 0 {
			if err := c.w.Flush(); err != nil {
				return err
			}
		}
	}
}

// process runs one command line and reports whether the connection stays
// open.
func (c *conn) process(line []byte) bool {
	args := strings.Fields(string(line))
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch strings.ToLower(cmd) {
	case "get", "gets":
		c.get(args)
	case "version":
		c.w.WriteString("VERSION " + Version + "\r\n")
	case "quit":
		return false
	default:
		c.w.WriteString(replyUnknown)
	}
	return true
}

func (c *conn) get(keys []string) {
	if len(keys) == 0 {
		c.w.WriteString(replyError)
		return
	}
	for _, key := range keys {
		c.value.Reset()
		if err := c.s.resolver.Answer(&c.value, key); err != nil {
			c.logger.Debug("answer", zap.String("key", key), zap.Error(err))
			continue
		}
		if c.value.Len() == 0 {
			continue
		}
		val := c.value.Bytes()
		if conv := c.s.conf.Converter; conv != nil {
			var err error
			if val, err = conv.Convert(val); err != nil {
				c.logger.Debug("convert", zap.String("key", key), zap.Error(err))
				continue
			}
		}
		c.w.WriteString("VALUE ")
		c.w.WriteString(key)
		c.w.WriteString(" 0 ")
		c.w.WriteString(strconv.Itoa(len(val)))
		c.w.WriteString("\r\n")
		c.w.Write(val)
		c.w.WriteString("\r\n")
	}
	c.w.WriteString(replyEnd)
}
