package domain

import (
	"strings"
	"time"
)

// ScanRecord 是归档表中的一行: 某次运行中单个仓库的结果快照
type ScanRecord struct {
	ID          uint      `gorm:"primaryKey"`
	RunID       string    `gorm:"index;size:36"`
	FullName    string    `gorm:"index"`
	Name        string
	URL         string
	Stars       int
	LastUpdated time.Time
	Status      string
	Evidence    string    `gorm:"type:text"` // 每行一条证据
	CheckedAt   time.Time `gorm:"index"`
}

// NewScanRecords 把一次运行的结果转换成归档行
func NewScanRecords(runID string, checkedAt time.Time, results []*RepositoryResult) []*ScanRecord {
	records := make([]*ScanRecord, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		records = append(records, &ScanRecord{
			RunID:       runID,
			FullName:    r.FullName,
			Name:        r.Name,
			URL:         r.URL,
			Stars:       r.Stars,
			LastUpdated: r.LastUpdated,
			Status:      string(r.Status),
			Evidence:    strings.Join(r.Evidence, "\n"),
			CheckedAt:   checkedAt,
		})
	}
	return records
}
