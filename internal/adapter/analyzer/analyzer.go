package analyzer

import (
	"regexp"
	"strings"

	"bip353-tracker/internal/domain"
)

// implementationPattern 文件路径看起来像实现/支持 BIP-353 的代码
var implementationPattern = regexp.MustCompile(`(?i)(implement|support).*BIP-?353`)

// Classifier 根据证据判断采纳状态，可替换
type Classifier func(evidence, codeFiles, closedIssueTitles []string) domain.Status

// Classify 是默认的启发式分类：
//   - 没有证据: Not Supported
//   - 有证据且存在实现类文件或标题含 "implemented" 的已关闭 issue: Supported
//   - 其余: In Progress
//
// codeFiles 为命中关键字的源码路径，closedIssueTitles 为命中关键字的已关闭 issue 标题。
// 纯函数，可能有误判。
func Classify(evidence, codeFiles, closedIssueTitles []string) domain.Status {
	if len(evidence) == 0 {
		return domain.StatusNotSupported
	}
	if HasImplementationFile(codeFiles) || HasImplementedIssue(closedIssueTitles) {
		return domain.StatusSupported
	}
	return domain.StatusInProgress
}

// HasImplementationFile 是否有路径匹配 (implement|support).*BIP-?353 的文件
func HasImplementationFile(codeFiles []string) bool {
	for _, file := range codeFiles {
		if implementationPattern.MatchString(file) {
			return true
		}
	}
	return false
}

// HasImplementedIssue 是否有标题包含 "implemented" 的已关闭 issue
func HasImplementedIssue(closedIssueTitles []string) bool {
	for _, title := range closedIssueTitles {
		if strings.Contains(strings.ToLower(title), "implemented") {
			return true
		}
	}
	return false
}

// ClassifyOutcome 对扫描结果分类并生成最终记录
func ClassifyOutcome(outcome *domain.ScanOutcome, classify Classifier) *domain.RepositoryResult {
	if classify == nil {
		classify = Classify
	}
	status := classify(outcome.Evidence, outcome.CodeFiles, outcome.ClosedIssueTitles)
	return outcome.Result(status)
}
