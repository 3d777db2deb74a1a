package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status 表示仓库对 BIP-353 的采纳状态
type Status string

const (
	StatusSupported    Status = "Supported"
	StatusInProgress   Status = "In Progress"
	StatusNotSupported Status = "Not Supported"
	StatusError        Status = "Error"
)

// Rank 用于报表排序: Supported < In Progress < Not Supported < Error
func (s Status) Rank() int {
	switch s {
	case StatusSupported:
		return 0
	case StatusInProgress:
		return 1
	case StatusNotSupported:
		return 2
	case StatusError:
		return 3
	default:
		return 4
	}
}

// RepositoryResult 是单个仓库一次检查的结果，每次运行重新计算
type RepositoryResult struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	LastUpdated time.Time `json:"last_updated"`
	Status      Status    `json:"bip353_status"`
	Evidence    []string  `json:"evidence"`
}

// HasEvidence 是否找到任何证据
func (r *RepositoryResult) HasEvidence() bool {
	return len(r.Evidence) > 0
}

// ScanOutcome 是扫描器的原始输出，分类前的中间结果
type ScanOutcome struct {
	Name        string
	FullName    string
	URL         string
	Stars       int
	LastUpdated time.Time

	Evidence []string

	// 命中关键字的源码文件路径
	CodeFiles []string
	// 命中关键字的已关闭 issue/PR 标题
	ClosedIssueTitles []string
}

// Result 用分类结果生成最终记录
func (o *ScanOutcome) Result(status Status) *RepositoryResult {
	evidence := make([]string, len(o.Evidence))
	copy(evidence, o.Evidence)
	return &RepositoryResult{
		Name:        o.Name,
		FullName:    o.FullName,
		URL:         o.URL,
		Stars:       o.Stars,
		LastUpdated: o.LastUpdated,
		Status:      status,
		Evidence:    evidence,
	}
}

// NewErrorResult 为处理失败的仓库生成占位记录，名称和地址由 handle 推断
func NewErrorResult(handle Handle, err error, now time.Time) *RepositoryResult {
	return &RepositoryResult{
		Name:        handle.Name,
		FullName:    handle.String(),
		URL:         handle.HTMLURL(),
		Stars:       0,
		LastUpdated: now,
		Status:      StatusError,
		Evidence:    []string{err.Error()},
	}
}

// Handle 是 "owner/name" 形式的仓库标识
type Handle struct {
	Owner string
	Name  string
}

// ParseHandle 解析 "owner/name"
func ParseHandle(s string) (Handle, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Handle{}, fmt.Errorf("无效的仓库标识 %q: 需要 owner/name 格式", s)
	}
	return Handle{Owner: parts[0], Name: parts[1]}, nil
}

func (h Handle) String() string {
	return h.Owner + "/" + h.Name
}

// HTMLURL 仓库的网页地址
func (h Handle) HTMLURL() string {
	return "https://github.com/" + h.String()
}

// Summary 报表汇总计数
type Summary struct {
	Supported    int
	InProgress   int
	NotSupported int
	Errors       int
}

// Summarize 统计各状态数量
func Summarize(results []*RepositoryResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusSupported:
			s.Supported++
		case StatusInProgress:
			s.InProgress++
		case StatusNotSupported:
			s.NotSupported++
		case StatusError:
			s.Errors++
		}
	}
	return s
}
