package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bip353-tracker/internal/adapter/feishu"
	"bip353-tracker/internal/adapter/file"
	"bip353-tracker/internal/adapter/github"
	"bip353-tracker/internal/adapter/report"
	"bip353-tracker/internal/adapter/repository"
	"bip353-tracker/internal/config"
	"bip353-tracker/internal/logger"
	"bip353-tracker/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置，缺少 GITHUB_TOKEN 时直接退出
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	// 2. 初始化日志
	zlog, err := logger.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		log.Fatalf("❌ 日志初始化失败: %v", err)
	}
	defer logger.Sync(zlog)

	// 3. Ctrl+C 取消本轮运行，已完成的结果仍会写出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Error("写出结果失败", zap.Error(err))
		logger.Sync(zlog)
		os.Exit(1)
	}
}

// run 组装各组件并执行一轮检查
func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	client := github.NewClient(cfg.GitHubToken)

	guard := github.NewRateLimitGuard(client, zlog,
		github.WithMaxAttempts(cfg.RateLimitMaxAttempts),
		github.WithResetBuffer(cfg.RateLimitBuffer),
	)

	opts := append([]service.Option{service.WithRequestDelay(cfg.RequestDelay)}, optionalOutputs(cfg, zlog)...)

	tracker := service.NewTrackerService(
		github.NewScanner(client, zlog),
		guard,
		report.NewMarkdown(),
		file.NewWriter(cfg.ResultsPath, cfg.ReportPath),
		zlog,
		opts...,
	)

	_, err := tracker.Run(ctx, cfg.Repositories)
	return err
}

// optionalOutputs 按配置启用归档和推送；数据库不可用时只记录日志
func optionalOutputs(cfg *config.Config, zlog *zap.Logger) []service.Option {
	var opts []service.Option

	if cfg.DatabaseDSN != "" {
		repoStore, err := repository.NewPostgresRepo(cfg.DatabaseDSN)
		if err != nil {
			zlog.Error("数据库初始化失败，本轮不归档", zap.Error(err))
		} else {
			opts = append(opts, service.WithArchive(repoStore))
		}
	}

	if cfg.FeishuWebhook != "" {
		opts = append(opts, service.WithNotifier(feishu.NewNotifier(cfg.FeishuWebhook, zlog)))
	}

	return opts
}
