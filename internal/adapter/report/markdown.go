package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bip353-tracker/internal/domain"
)

// Markdown 实现了 port.ReportBuilder 接口，生成 markdown 表格报表
type Markdown struct{}

// NewMarkdown 创建报表生成器
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Sorted 返回按 (状态, 名称) 排序后的副本，不修改输入
func Sorted(results []*domain.RepositoryResult) []*domain.RepositoryResult {
	sorted := make([]*domain.RepositoryResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].Status.Rank(), sorted[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Build 生成报表文本
// 汇总部分只统计 Supported / In Progress / Not Supported，Error 不计入
func (m *Markdown) Build(results []*domain.RepositoryResult, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# BIP-353 Support in Bitcoin/Lightning Projects\n\n")
	fmt.Fprintf(&b, "*Last updated: %s UTC*\n\n", generatedAt.UTC().Format("2006-01-02 15:04:05"))

	b.WriteString("| Project | BIP-353 Status | Stars | Evidence |\n")
	b.WriteString("|---------|---------------|-------|----------|\n")

	for _, r := range Sorted(results) {
		evidence := "None found"
		if r.HasEvidence() {
			evidence = strings.Join(r.Evidence, "<br>")
		}
		fmt.Fprintf(&b, "| [%s](%s) | %s | %d | %s |\n", r.Name, r.URL, r.Status, r.Stars, evidence)
	}

	s := domain.Summarize(results)
	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- Supported: %d\n", s.Supported)
	fmt.Fprintf(&b, "- In Progress: %d\n", s.InProgress)
	fmt.Fprintf(&b, "- Not Supported: %d\n", s.NotSupported)

	return b.String()
}
