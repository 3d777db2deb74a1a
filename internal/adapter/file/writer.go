package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bip353-tracker/internal/common"
	"bip353-tracker/internal/domain"
)

// Writer 实现了 port.ResultWriter 接口，每次运行整体覆盖两个产物文件
type Writer struct {
	resultsPath string
	reportPath  string
}

func NewWriter(resultsPath, reportPath string) *Writer {
	return &Writer{resultsPath: resultsPath, reportPath: reportPath}
}

// WriteResults 以两空格缩进写出结果数组，空证据写成 []
func (w *Writer) WriteResults(results []*domain.RepositoryResult) error {
	out := make([]domain.RepositoryResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		row := *r
		if row.Evidence == nil {
			row.Evidence = []string{}
		}
		out = append(out, row)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return common.WrapError(common.ErrCodeStorage, "encode results", err)
	}
	return writeFile(w.resultsPath, data)
}

// WriteReport 写出 markdown 报表
func (w *Writer) WriteReport(report string) error {
	return writeFile(w.reportPath, []byte(report))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("create directory %s", dir), err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("write %s", path), err)
	}
	return nil
}
