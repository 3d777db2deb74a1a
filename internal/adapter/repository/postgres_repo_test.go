package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"bip353-tracker/internal/common"
	"bip353-tracker/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB 创建一个模拟的数据库连接
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	// 禁用日志以减少输出
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func TestPostgresRepo_SaveRun(t *testing.T) {
	checkedAt := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		results     []*domain.RepositoryResult
		setupMock   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "成功保存一轮结果",
			results: []*domain.RepositoryResult{
				{
					Name:     "Y",
					FullName: "X/Y",
					URL:      "https://github.com/X/Y",
					Stars:    10,
					Status:   domain.StatusSupported,
					Evidence: []string{"BIP-353 mentioned in README", "Found 1 closed issues/PRs related to BIP-353"},
				},
				{
					Name:     "Z",
					FullName: "X/Z",
					URL:      "https://github.com/X/Z",
					Status:   domain.StatusNotSupported,
					Evidence: []string{},
				},
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scan_records"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
				mock.ExpectCommit()
			},
			expectError: false,
		},
		{
			name:        "空结果不访问数据库",
			results:     nil,
			setupMock:   nil,
			expectError: false,
		},
		{
			name: "数据库错误",
			results: []*domain.RepositoryResult{
				{Name: "W", FullName: "X/W", Status: domain.StatusError, Evidence: []string{"boom"}},
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scan_records"`)).
					WillReturnError(gorm.ErrInvalidDB)
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock, cleanup := setupMockDB(t)
			defer cleanup()

			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			repo := &PostgresRepo{db: gormDB}
			err := repo.SaveRun(context.Background(), "run-1", checkedAt, tt.results)

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, common.ErrCodeStorage, common.CodeOf(err))
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewPostgresRepo_ConnectionError(t *testing.T) {
	repo, err := NewPostgresRepo("invalid-connection-string")

	assert.Error(t, err)
	assert.Nil(t, repo)
	assert.Equal(t, common.ErrCodeStorage, common.CodeOf(err))
}
