package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"bip353-tracker/internal/adapter/analyzer"
	"bip353-tracker/internal/adapter/github"
	"bip353-tracker/internal/config"
	"bip353-tracker/internal/domain"
	"bip353-tracker/internal/logger"

	"go.uber.org/zap"
)

// 调试模式：检查单个仓库并打印结果
// 用法: go run ./cmd/debug owner/name
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "用法: debug owner/name")
		os.Exit(2)
	}

	handle, err := domain.ParseHandle(os.Args[1])
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	zlog, err := logger.New("debug", "")
	if err != nil {
		log.Fatalf("❌ 日志初始化失败: %v", err)
	}
	defer logger.Sync(zlog)

	ctx := context.Background()
	client := github.NewClient(cfg.GitHubToken)
	scanner := github.NewScanner(client, zlog)

	outcome, err := scanner.Scan(ctx, handle)
	if err != nil {
		zlog.Error("扫描失败", zap.String("repo", handle.String()), zap.Error(err))
		os.Exit(1)
	}

	result := analyzer.ClassifyOutcome(outcome, analyzer.Classify)

	fmt.Printf("🔍 %s\n", handle)
	fmt.Printf("  命中源码文件: %v\n", outcome.CodeFiles)
	fmt.Printf("  命中已关闭 issue: %v\n", outcome.ClosedIssueTitles)

	out, err := formatResult(result)
	if err != nil {
		log.Fatalf("❌ 序列化结果失败: %v", err)
	}
	fmt.Println(out)
}

// formatResult 以与结果文件相同的缩进输出单条结果
func formatResult(result *domain.RepositoryResult) (string, error) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
