package port_test

import (
	"testing"

	"bip353-tracker/internal/adapter/feishu"
	"bip353-tracker/internal/adapter/file"
	"bip353-tracker/internal/adapter/github"
	"bip353-tracker/internal/adapter/report"
	"bip353-tracker/internal/adapter/repository"
	"bip353-tracker/internal/port"

	"github.com/stretchr/testify/assert"
)

// 编译期确认各适配器实现了对应接口
var (
	_ port.Scanner       = (*github.Scanner)(nil)
	_ port.Guard         = (*github.RateLimitGuard)(nil)
	_ port.ReportBuilder = (*report.Markdown)(nil)
	_ port.ResultWriter  = (*file.Writer)(nil)
	_ port.Archive       = (*repository.PostgresRepo)(nil)
	_ port.Notifier      = (*feishu.Notifier)(nil)
)

func TestInterfaces(t *testing.T) {
	var guard port.Guard = github.NewRateLimitGuard(nil, nil)
	assert.NotNil(t, guard)

	var builder port.ReportBuilder = report.NewMarkdown()
	assert.NotNil(t, builder)
}
