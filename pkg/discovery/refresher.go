package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/xproxy/pkg/logger"
)

// 刷新节奏是策略常量而非用户配置
// 间隔与典型注册中心的 gossip 收敛窗口同量级
const (
	DefaultInterval       = 3 * time.Second
	DefaultPollTimeout    = 2 * time.Second
	DefaultStartupTimeout = 10 * time.Second
)

// PollOutcome 一次轮询的结果分类
type PollOutcome string

const (
	// PollSuccess 查询与排序全部成功
	PollSuccess PollOutcome = "success"

	// PollFailure 目录查询失败，未发布新快照
	PollFailure PollOutcome = "failure"

	// PollDegraded 已发布快照，但坐标不可用，使用注册中心原始顺序
	PollDegraded PollOutcome = "degraded"
)

// Refresher 拥有后台刷新循环
// 周期性执行 目录查询 + 就近排序 并发布新快照，
// 轮询失败时保留上一个成功快照，隔离注册中心抖动
type Refresher struct {
	source Source
	ranker Ranker
	store  *Store
	log    logger.Logger

	interval       time.Duration
	pollTimeout    time.Duration
	startupTimeout time.Duration
	onPoll         func(outcome PollOutcome, endpoints int)

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started atomic.Bool
	running atomic.Bool
}

// NewRefresher 创建刷新器，ranker 为 nil 时保持原始顺序
func NewRefresher(source Source, ranker Ranker, store *Store, opts ...RefresherOption) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Refresher{
		source:         source,
		ranker:         ranker,
		store:          store,
		log:            logger.Default().Named("discovery"),
		interval:       DefaultInterval,
		pollTimeout:    DefaultPollTimeout,
		startupTimeout: DefaultStartupTimeout,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}

	if r.ranker == nil {
		r.ranker = Unranked{}
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start 同步完成首次轮询并发布快照，成功后启动后台刷新循环
// 首次轮询在启动超时窗口内按刷新间隔重试，窗口耗尽返回 ErrInitialDiscovery；
// 返回错误时进程不应开始对外服务
func (r *Refresher) Start() error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	initCtx, cancel := context.WithTimeout(r.ctx, r.startupTimeout)
	defer cancel()

	for {
		err := r.poll(initCtx)
		if err == nil {
			break
		}
		r.log.Warn("initial discovery poll failed, retrying", "error", err)

		select {
		case <-initCtx.Done():
			return fmt.Errorf("%w: %v", ErrInitialDiscovery, err)
		case <-time.After(r.interval):
		}
	}

	snap := r.store.Current()
	r.log.Info("initial snapshot published",
		"seq", snap.Seq,
		"endpoints", len(snap.Endpoints),
	)

	r.running.Store(true)
	go r.loop()
	return nil
}

// Stop 停止刷新循环并等待其退出
func (r *Refresher) Stop() error {
	r.cancel()
	if r.running.Load() {
		<-r.done
	}
	return nil
}

// Store 返回刷新器发布快照的存储
func (r *Refresher) Store() *Store {
	return r.store
}

func (r *Refresher) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if err := r.poll(r.ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				cur := r.store.Current()
				r.log.Warn("discovery poll failed, retaining last snapshot",
					"error", err,
					"seq", cur.Seq,
					"age", cur.Age().String(),
				)
			}
		}
	}
}

// poll 执行一次 目录查询 + 排序 + 发布，整体受单次轮询超时约束
// 同一时刻最多一次轮询在途，慢轮询只会推迟下一个 tick
func (r *Refresher) poll(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, r.pollTimeout)
	defer cancel()

	endpoints, err := r.source.Fetch(ctx)
	if err != nil {
		if r.onPoll != nil {
			r.onPoll(PollFailure, 0)
		}
		return err
	}

	outcome := PollSuccess
	ranked, err := r.ranker.Rank(ctx, endpoints)
	if err != nil {
		// 坐标不可用不致命，按注册中心原始顺序发布
		outcome = PollDegraded
		r.log.Warn("proximity ranking unavailable, using registry order", "error", err)
	}

	snap := r.store.Publish(ranked)
	if r.onPoll != nil {
		r.onPoll(outcome, len(ranked))
	}
	r.log.Debug("published candidate snapshot",
		"seq", snap.Seq,
		"endpoints", len(ranked),
	)
	return nil
}
