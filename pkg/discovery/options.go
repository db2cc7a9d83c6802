package discovery

import (
	"time"

	"github.com/lk2023060901/xproxy/pkg/logger"
)

// RefresherOption 刷新器选项函数
type RefresherOption func(*Refresher)

// WithInterval 设置刷新间隔
func WithInterval(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithPollTimeout 设置单次轮询超时
func WithPollTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.pollTimeout = d
		}
	}
}

// WithStartupTimeout 设置首次发现的超时窗口
func WithStartupTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.startupTimeout = d
		}
	}
}

// WithLogger 设置日志对象
func WithLogger(l logger.Logger) RefresherOption {
	return func(r *Refresher) {
		if l != nil {
			r.log = l
		}
	}
}

// WithPollHook 设置轮询结果回调，用于上报指标
// 发布成功时 endpoints 是本次快照的候选数量
func WithPollHook(fn func(outcome PollOutcome, endpoints int)) RefresherOption {
	return func(r *Refresher) {
		r.onPoll = fn
	}
}
