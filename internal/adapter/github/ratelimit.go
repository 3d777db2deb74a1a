package github

import (
	"context"
	"errors"
	"time"

	"bip353-tracker/internal/common"
	"bip353-tracker/internal/domain"

	"github.com/google/go-github/v53/github"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 5
	defaultResetBuffer = 60 * time.Second
)

// RateLimitReader 读取当前限流窗口，*github.Client 满足该接口
type RateLimitReader interface {
	RateLimits(ctx context.Context) (*github.RateLimits, *github.Response, error)
}

// CheckFunc 对单个仓库执行一次完整的扫描+分类
type CheckFunc = func(ctx context.Context, handle domain.Handle) (*domain.RepositoryResult, error)

// IsRateLimit 判断是否为 GitHub 限流错误（主限流或二级限流）
func IsRateLimit(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *github.AbuseRateLimitError
	return errors.As(err, &abuseErr)
}

// RateLimitGuard 遇到限流时等待窗口重置后重试同一个仓库，重试次数有上限
type RateLimitGuard struct {
	limits      RateLimitReader
	log         *zap.Logger
	maxAttempts int
	buffer      time.Duration
	nowFunc     func() time.Time
	sleep       common.SleepFunc
}

// GuardOption 配置 RateLimitGuard
type GuardOption func(*RateLimitGuard)

// WithMaxAttempts 总尝试次数（含第一次），默认 5
func WithMaxAttempts(n int) GuardOption {
	return func(g *RateLimitGuard) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithResetBuffer 在重置时间之后额外等待的时长，默认 60 秒
func WithResetBuffer(d time.Duration) GuardOption {
	return func(g *RateLimitGuard) {
		if d >= 0 {
			g.buffer = d
		}
	}
}

// WithClock 便于测试注入当前时间
func WithClock(now func() time.Time) GuardOption {
	return func(g *RateLimitGuard) {
		if now != nil {
			g.nowFunc = now
		}
	}
}

// WithSleeper 便于测试替换等待实现
func WithSleeper(sleep common.SleepFunc) GuardOption {
	return func(g *RateLimitGuard) {
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

// NewRateLimitGuard 创建限流守卫
func NewRateLimitGuard(limits RateLimitReader, log *zap.Logger, opts ...GuardOption) *RateLimitGuard {
	if log == nil {
		log = zap.NewNop()
	}
	g := &RateLimitGuard{
		limits:      limits,
		log:         log,
		maxAttempts: defaultMaxAttempts,
		buffer:      defaultResetBuffer,
		nowFunc:     time.Now,
		sleep:       common.Sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run 执行 check；只有限流错误会触发等待与重试，其他错误原样返回
func (g *RateLimitGuard) Run(ctx context.Context, handle domain.Handle, check CheckFunc) (*domain.RepositoryResult, error) {
	var result *domain.RepositoryResult

	err := common.Do(ctx, func() error {
		var checkErr error
		result, checkErr = check(ctx, handle)
		return checkErr
	},
		common.WithMaxRetries(g.maxAttempts-1),
		common.WithRetryIf(IsRateLimit),
		common.WithDelayFunc(func(attempt int, err error) time.Duration {
			wait := g.waitFor(ctx, err)
			g.log.Error("GitHub API 触发限流，等待后重试",
				zap.String("repo", handle.String()),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", g.maxAttempts),
				zap.Duration("wait", wait))
			return wait
		}),
		common.WithSleep(g.sleep),
	)
	if err != nil {
		if IsRateLimit(err) {
			return nil, common.WrapError(common.ErrCodeRateLimited, "rate limit retries exhausted", err)
		}
		return nil, err
	}
	return result, nil
}

// waitFor 计算等待时长: 重置时间 - 当前时间 + 缓冲；非正数表示立即重试
func (g *RateLimitGuard) waitFor(ctx context.Context, err error) time.Duration {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if abuseErr.RetryAfter != nil {
			return *abuseErr.RetryAfter + g.buffer
		}
		return g.buffer
	}

	wait := g.resetTime(ctx, err).Sub(g.nowFunc()) + g.buffer
	if wait < 0 {
		return 0
	}
	return wait
}

// resetTime 优先读取 API 报告的 core 窗口，失败时使用错误中携带的重置时间
func (g *RateLimitGuard) resetTime(ctx context.Context, err error) time.Time {
	if g.limits != nil {
		limits, _, limitErr := g.limits.RateLimits(ctx)
		if limitErr == nil && limits != nil && limits.Core != nil {
			return limits.Core.Reset.Time
		}
		if limitErr != nil {
			g.log.Warn("无法读取限流窗口", zap.Error(limitErr))
		}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && !rateErr.Rate.Reset.Time.IsZero() {
		return rateErr.Rate.Reset.Time
	}
	return g.nowFunc()
}
