package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/lk2023060901/xproxy/pkg/config"
	"github.com/lk2023060901/xproxy/pkg/discovery"
	"github.com/lk2023060901/xproxy/pkg/logger"
	"github.com/lk2023060901/xproxy/pkg/pool/bytebuff"
	"github.com/lk2023060901/xproxy/pkg/selector"
)

// Server 透明 TCP 代理服务器。为每条接入连接从当前服务快照中
// 选出一个上游端点，建连后在两个方向之间转发字节流。
type Server struct {
	config  *Config
	store   *discovery.Store
	picker  selector.Picker
	log     logger.Logger
	metrics *Metrics
	pool    *bytebuff.Pool
	workers *ants.Pool

	ctx    context.Context
	cancel context.CancelFunc

	acceptWG  sync.WaitGroup
	sessionWG sync.WaitGroup
	sessions  sync.Map

	mu       sync.RWMutex
	listener net.Listener
	started  atomic.Bool
	closed   atomic.Bool
}

// New 创建代理服务器
func New(store *discovery.Store, cfg *Config, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: discovery store is required", ErrInvalidConfig)
	}

	// 合并配置
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config: newCfg,
		store:  store,
		log:    logger.Default().Named("proxy"),
		pool:   bytebuff.Default(),
		ctx:    ctx,
		cancel: cancel,
	}

	// 应用选项
	for _, opt := range opts {
		opt(s)
	}

	if s.picker == nil {
		s.picker = selector.New(newCfg.Selector)
		if s.picker == nil {
			cancel()
			return nil, fmt.Errorf("%w: %q", ErrUnknownSelector, newCfg.Selector)
		}
	}

	// 会话工作池，池满时 Submit 阻塞接收循环形成背压
	workers, err := ants.NewPool(newCfg.MaxConnections)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	s.workers = workers

	return s, nil
}

// Start 启动监听并开始接收连接
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrServerClosed
	}
	if s.started.Load() {
		return ErrServerAlreadyStarted
	}

	lc := net.ListenConfig{KeepAlive: s.config.TCPKeepAlive}
	listener, err := lc.Listen(s.ctx, s.config.Network, s.config.Bind)
	if err != nil {
		return fmt.Errorf("failed to listen on %s://%s: %w",
			s.config.Network, s.config.Bind, err)
	}

	s.listener = listener
	s.started.Store(true)

	for i := 0; i < s.config.Workers; i++ {
		s.acceptWG.Add(1)
		go s.acceptLoop(listener)
	}

	s.log.Info("proxy server started",
		"address", listener.Addr().String(),
		"workers", s.config.Workers,
		"selector", s.config.Selector,
	)

	return nil
}

// Stop 立即停止，关闭监听器并强制断开所有在途会话
func (s *Server) Stop() error {
	return s.shutdown(0)
}

// GracefulStop 停止接收新连接，等待在途会话结束，超过宽限期后强制断开
func (s *Server) GracefulStop() error {
	return s.shutdown(s.config.DrainTimeout)
}

func (s *Server) shutdown(drain time.Duration) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.RLock()
	listener := s.listener
	s.mu.RUnlock()

	if listener == nil {
		// 从未启动，只需释放资源
		s.cancel()
		s.workers.Release()
		return nil
	}

	s.log.Info("stopping proxy server", "drain_timeout", drain.String())

	_ = listener.Close()
	s.acceptWG.Wait()

	if drain > 0 {
		done := make(chan struct{})
		go func() {
			s.sessionWG.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(drain):
			s.log.Warn("drain timeout, forcing active sessions closed")
			s.closeActiveSessions()
		}
	} else {
		s.closeActiveSessions()
	}

	// 中断仍在建连阶段的上游拨号
	s.cancel()
	s.sessionWG.Wait()
	s.workers.Release()

	s.log.Info("proxy server stopped")
	return nil
}

// GetListener 获取监听器
func (s *Server) GetListener() net.Listener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listener
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.acceptWG.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept failed", "error", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		s.metrics.connAccepted()
		s.sessionWG.Add(1)

		if err := s.workers.Submit(func() {
			defer s.sessionWG.Done()
			s.handle(conn)
		}); err != nil {
			s.sessionWG.Done()
			_ = conn.Close()
			if !s.closed.Load() {
				s.log.Warn("dispatch failed",
					"remote_addr", conn.RemoteAddr().String(),
					"error", err,
				)
			}
		}
	}
}

func (s *Server) handle(client net.Conn) {
	remote := client.RemoteAddr().String()

	if tc, ok := client.(*net.TCPConn); ok && s.config.TCPNoDelay {
		_ = tc.SetNoDelay(true)
	}

	ep := s.picker.Pick(s.store.Current(), selector.PickInfo{RemoteAddr: remote})
	if ep == nil {
		s.metrics.connFailed(ReasonNoCandidates)
		s.log.Warn("closing client connection",
			"remote_addr", remote,
			"error", ErrNoCandidates,
		)
		_ = client.Close()
		return
	}

	upstream, err := s.dial(ep)
	if err != nil {
		reason := classifyDialError(err)
		s.metrics.connFailed(reason)
		s.log.Warn("upstream dial failed",
			"remote_addr", remote,
			"endpoint", ep.String(),
			"reason", reason,
			"error", err,
		)
		_ = client.Close()
		return
	}

	s.metrics.connOpened()
	defer s.metrics.connClosed()

	sess := newSession(client, upstream, ep, s.config.BufferSize, s.pool, s.log)
	s.sessions.Store(sess.ID(), sess)
	defer s.sessions.Delete(sess.ID())

	s.log.Debug("session opened",
		"session_id", sess.ID(),
		"remote_addr", remote,
		"endpoint", ep.String(),
	)

	sess.relay()

	in, out := sess.bytesIn.Load(), sess.bytesOut.Load()
	s.metrics.bytesRelayed(DirectionIn, in)
	s.metrics.bytesRelayed(DirectionOut, out)

	s.log.Debug("session closed",
		"session_id", sess.ID(),
		"remote_addr", remote,
		"endpoint", ep.String(),
		"bytes_in", in,
		"bytes_out", out,
		"duration", time.Since(sess.started).String(),
	)
}

// dial 按配置的超时连接上游端点
func (s *Server) dial(ep *discovery.Endpoint) (net.Conn, error) {
	d := net.Dialer{
		Timeout:   s.config.ConnectTimeout,
		KeepAlive: s.config.TCPKeepAlive,
	}

	start := time.Now()
	conn, err := d.DialContext(s.ctx, s.config.Network, ep.Addr())
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.dialObserved(classifyDialError(err), elapsed)
		return nil, err
	}
	s.metrics.dialObserved(OutcomeSuccess, elapsed)

	if tc, ok := conn.(*net.TCPConn); ok && s.config.TCPNoDelay {
		_ = tc.SetNoDelay(true)
	}

	return conn, nil
}

func (s *Server) closeActiveSessions() {
	s.sessions.Range(func(_, value interface{}) bool {
		if sess, ok := value.(*Session); ok {
			sess.Close()
		}
		return true
	})
}

// classifyDialError 将建连错误归类为指标 reason
func classifyDialError(err error) string {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonUpstreamTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return ReasonUpstreamRefused
	default:
		return ReasonUpstreamError
	}
}
