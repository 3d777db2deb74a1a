package service

import (
	"context"
	"time"

	"bip353-tracker/internal/adapter/analyzer"
	"bip353-tracker/internal/common"
	"bip353-tracker/internal/domain"
	"bip353-tracker/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRequestDelay = 2 * time.Second

// TrackerService 顺序检查每个仓库，再输出报表和结构化结果
type TrackerService struct {
	scanner  port.Scanner
	guard    port.Guard
	reporter port.ReportBuilder
	writer   port.ResultWriter
	archive  port.Archive  // 可选
	notifier port.Notifier // 可选

	classify analyzer.Classifier
	log      *zap.Logger
	delay    time.Duration
	sleep    common.SleepFunc
	nowFunc  func() time.Time
	newRunID func() string
}

// Option 配置 TrackerService
type Option func(*TrackerService)

// WithArchive 启用运行归档
func WithArchive(a port.Archive) Option {
	return func(s *TrackerService) { s.archive = a }
}

// WithNotifier 启用汇总推送
func WithNotifier(n port.Notifier) Option {
	return func(s *TrackerService) { s.notifier = n }
}

// WithClassifier 替换默认的分类函数
func WithClassifier(c analyzer.Classifier) Option {
	return func(s *TrackerService) {
		if c != nil {
			s.classify = c
		}
	}
}

// WithRequestDelay 相邻两个仓库之间的固定间隔
func WithRequestDelay(d time.Duration) Option {
	return func(s *TrackerService) {
		if d >= 0 {
			s.delay = d
		}
	}
}

func WithSleeper(sleep common.SleepFunc) Option {
	return func(s *TrackerService) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TrackerService) {
		if now != nil {
			s.nowFunc = now
		}
	}
}

func WithRunIDFunc(fn func() string) Option {
	return func(s *TrackerService) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// NewTrackerService 创建追踪服务
func NewTrackerService(
	scanner port.Scanner,
	guard port.Guard,
	reporter port.ReportBuilder,
	writer port.ResultWriter,
	log *zap.Logger,
	opts ...Option,
) *TrackerService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &TrackerService{
		scanner:  scanner,
		guard:    guard,
		reporter: reporter,
		writer:   writer,
		classify: analyzer.Classify,
		log:      log,
		delay:    defaultRequestDelay,
		sleep:    common.Sleep,
		nowFunc:  time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckRepository 在限流守卫下完成一次扫描+分类
func (s *TrackerService) CheckRepository(ctx context.Context, handle domain.Handle) (*domain.RepositoryResult, error) {
	return s.guard.Run(ctx, handle, s.check)
}

func (s *TrackerService) check(ctx context.Context, handle domain.Handle) (*domain.RepositoryResult, error) {
	outcome, err := s.scanner.Scan(ctx, handle)
	if err != nil {
		return nil, err
	}
	return analyzer.ClassifyOutcome(outcome, s.classify), nil
}

// CheckAll 逐个检查仓库，每个仓库都会产生一条结果
// 单个仓库失败记为 Error，不影响后续仓库
func (s *TrackerService) CheckAll(ctx context.Context, handles []domain.Handle) []*domain.RepositoryResult {
	results := make([]*domain.RepositoryResult, 0, len(handles))

	for i, handle := range handles {
		result, err := s.CheckRepository(ctx, handle)
		if err != nil {
			s.log.Error("检查仓库失败",
				zap.String("repo", handle.String()),
				zap.Error(err))
			result = domain.NewErrorResult(handle, err, s.nowFunc())
		} else {
			s.log.Info("检查完成",
				zap.String("repo", handle.String()),
				zap.String("status", string(result.Status)),
				zap.Int("evidence", len(result.Evidence)))
		}
		results = append(results, result)

		// 避免触发 API 限制；被取消后不再等待，剩余仓库快速失败
		if i < len(handles)-1 && ctx.Err() == nil {
			if err := s.sleep(ctx, s.delay); err != nil {
				s.log.Warn("请求间隔被中断", zap.Error(err))
			}
		}
	}

	return results
}

// Run 执行一轮完整的追踪: 检查、生成报表、写出产物，然后归档和推送
// 只有写产物失败才返回错误
func (s *TrackerService) Run(ctx context.Context, handles []domain.Handle) ([]*domain.RepositoryResult, error) {
	runID := s.newRunID()
	log := s.log.With(zap.String("run_id", runID))
	log.Info("开始检查 BIP-353 支持情况", zap.Int("repositories", len(handles)))

	results := s.CheckAll(ctx, handles)
	generatedAt := s.nowFunc()

	if err := s.writer.WriteResults(results); err != nil {
		return results, err
	}
	if err := s.writer.WriteReport(s.reporter.Build(results, generatedAt)); err != nil {
		return results, err
	}

	summary := domain.Summarize(results)
	log.Info("报表已生成",
		zap.Int("supported", summary.Supported),
		zap.Int("in_progress", summary.InProgress),
		zap.Int("not_supported", summary.NotSupported),
		zap.Int("errors", summary.Errors))

	if s.archive != nil {
		if err := s.archive.SaveRun(ctx, runID, generatedAt, results); err != nil {
			log.Error("归档运行结果失败", zap.Error(err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifySummary(ctx, runID, results); err != nil {
			log.Error("推送运行汇总失败", zap.Error(err))
		}
	}

	return results, nil
}
