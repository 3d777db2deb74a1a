package port

import (
	"context"
	"time"

	"bip353-tracker/internal/domain"
)

// Scanner (侦察兵): 在仓库的 README、源码和 issue 中寻找 BIP-353 证据
type Scanner interface {
	Scan(ctx context.Context, handle domain.Handle) (*domain.ScanOutcome, error)
}

// Guard (守卫): 包住一次检查，遇到限流时等待并重试
type Guard interface {
	Run(ctx context.Context, handle domain.Handle, check func(ctx context.Context, handle domain.Handle) (*domain.RepositoryResult, error)) (*domain.RepositoryResult, error)
}

// ReportBuilder 把结果渲染成报表文本
type ReportBuilder interface {
	Build(results []*domain.RepositoryResult, generatedAt time.Time) string
}

// ResultWriter 写出结构化结果和报表两个产物
type ResultWriter interface {
	WriteResults(results []*domain.RepositoryResult) error
	WriteReport(report string) error
}

// Archive (仓库管理员): 可选，保存每次运行的结果快照
type Archive interface {
	SaveRun(ctx context.Context, runID string, checkedAt time.Time, results []*domain.RepositoryResult) error
}

// Notifier (信使): 可选，推送运行汇总
type Notifier interface {
	NotifySummary(ctx context.Context, runID string, results []*domain.RepositoryResult) error
}
