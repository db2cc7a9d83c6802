package proxy

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/xproxy/pkg/discovery"
	"github.com/lk2023060901/xproxy/pkg/logger"
	"github.com/lk2023060901/xproxy/pkg/pool/bytebuff"
)

// closeWriter 支持半关闭写端的连接，*net.TCPConn 实现了该接口
type closeWriter interface {
	CloseWrite() error
}

// Session 一条客户端与上游之间的转发会话
type Session struct {
	id       string
	client   net.Conn
	upstream net.Conn
	endpoint *discovery.Endpoint
	started  time.Time
	log      logger.Logger
	bufSize  int
	pool     *bytebuff.Pool

	bytesIn  atomic.Int64
	bytesOut atomic.Int64

	closeOnce sync.Once
}

func newSession(client, upstream net.Conn, ep *discovery.Endpoint, bufSize int, pool *bytebuff.Pool, log logger.Logger) *Session {
	return &Session{
		id:       uuid.NewString(),
		client:   client,
		upstream: upstream,
		endpoint: ep,
		started:  time.Now(),
		log:      log,
		bufSize:  bufSize,
		pool:     pool,
	}
}

// ID 返回会话标识
func (s *Session) ID() string {
	return s.id
}

// Close 同时关闭客户端与上游连接，可重复调用
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = s.client.Close()
		_ = s.upstream.Close()
	})
}

// relay 双向转发字节流，直到两个方向都结束
func (s *Session) relay() {
	defer s.Close()

	g := new(errgroup.Group)
	g.Go(func() error {
		return s.pump(s.upstream, s.client, &s.bytesIn)
	})
	g.Go(func() error {
		return s.pump(s.client, s.upstream, &s.bytesOut)
	})

	if err := g.Wait(); err != nil && !isClosedConn(err) {
		s.log.Debug("relay interrupted",
			"session_id", s.id,
			"endpoint", s.endpoint.String(),
			"error", err,
		)
	}
}

// pump 单向搬运字节。源端 EOF 时向目的端传递半关闭并保持
// 反向转发，读写出错时关闭两端以解除另一方向的阻塞。
func (s *Session) pump(dst, src net.Conn, counter *atomic.Int64) error {
	buf := s.pool.Get(s.bufSize)
	defer s.pool.Put(buf)

	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			counter.Add(int64(nw))
			if werr != nil {
				s.Close()
				return werr
			}
			if nw < nr {
				s.Close()
				return io.ErrShortWrite
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				if cw, ok := dst.(closeWriter); ok {
					_ = cw.CloseWrite()
				} else {
					_ = dst.Close()
				}
				return nil
			}
			s.Close()
			return rerr
		}
	}
}

func isClosedConn(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
