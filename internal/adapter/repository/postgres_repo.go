package repository

import (
	"context"
	"fmt"
	"time"

	"bip353-tracker/internal/common"
	"bip353-tracker/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresRepo 实现了 port.Archive 接口，保存每次运行的结果快照
type PostgresRepo struct {
	db *gorm.DB
}

// NewPostgresRepo 初始化数据库连接并自动迁移表结构
func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeStorage, "connect database", err)
	}

	// 自动创建 scan_records 表
	if err := db.AutoMigrate(&domain.ScanRecord{}); err != nil {
		return nil, common.WrapError(common.ErrCodeStorage, "migrate database", err)
	}

	return &PostgresRepo{db: db}, nil
}

// SaveRun 一次性写入本轮全部结果
func (r *PostgresRepo) SaveRun(ctx context.Context, runID string, checkedAt time.Time, results []*domain.RepositoryResult) error {
	records := domain.NewScanRecords(runID, checkedAt, results)
	if len(records) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("save run %s", runID), err)
	}
	return nil
}
