// Package config loads tracker configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"bip353-tracker/internal/common"
	"bip353-tracker/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile 默认读取的 .env 文件
const DefaultEnvFile = ".env"

// DefaultRepositories 默认检查的比特币/闪电网络钱包仓库
var DefaultRepositories = []string{
	"breez/breezmobile",
	"satochip/wallet",
	"LightningLabs/lightning-app",
	"btcpayserver/btcpayserver",
	"ElectrumWallet/Electrum",
	"BlueWallet/BlueWallet",
	"LightningTipBot/LightningTipBot",
	"phoenix-wallet/phoenix",
	"muun/apollo",
}

// Config 一次运行所需的全部配置，启动时构造一次，之后只读
type Config struct {
	GitHubToken  string
	Repositories []domain.Handle

	ResultsPath string
	ReportPath  string
	LogPath     string
	LogLevel    string

	RequestDelay         time.Duration
	RateLimitMaxAttempts int
	RateLimitBuffer      time.Duration

	// 可选: 为空则不启用
	DatabaseDSN   string
	FeishuWebhook string
}

// Load 从环境变量加载配置，envFile 存在时先读入（已有环境变量优先）
func Load(envFile string) (*Config, error) {
	// godotenv.Load 不覆盖已存在的环境变量；文件不存在时忽略
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, common.WrapError(common.ErrCodeConfig, "读取 "+envFile+" 失败", err)
	}

	v := viper.New()

	v.AutomaticEnv()
	setDefaults(v)
	bindEnvs(v)

	cfg := &Config{
		GitHubToken:          strings.TrimSpace(v.GetString("GITHUB_TOKEN")),
		ResultsPath:          v.GetString("RESULTS_PATH"),
		ReportPath:           v.GetString("REPORT_PATH"),
		LogPath:              v.GetString("LOG_PATH"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		RequestDelay:         v.GetDuration("REQUEST_DELAY"),
		RateLimitMaxAttempts: v.GetInt("RATE_LIMIT_MAX_ATTEMPTS"),
		RateLimitBuffer:      v.GetDuration("RATE_LIMIT_BUFFER"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		FeishuWebhook:        v.GetString("FEISHU_WEBHOOK"),
	}

	handles, err := ParseRepositories(repositoryList(v.GetString("TRACKER_REPOSITORIES")))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeConfig, "仓库列表无效", err)
	}
	cfg.Repositories = handles

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("RESULTS_PATH", "bip353_results.json")
	v.SetDefault("REPORT_PATH", "BIP353_SUPPORT.md")
	v.SetDefault("LOG_PATH", "bip353_tracker.log")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_DELAY", 2*time.Second)
	v.SetDefault("RATE_LIMIT_MAX_ATTEMPTS", 5)
	v.SetDefault("RATE_LIMIT_BUFFER", 60*time.Second)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"GITHUB_TOKEN",
		"TRACKER_REPOSITORIES",
		"RESULTS_PATH",
		"REPORT_PATH",
		"LOG_PATH",
		"LOG_LEVEL",
		"REQUEST_DELAY",
		"RATE_LIMIT_MAX_ATTEMPTS",
		"RATE_LIMIT_BUFFER",
		"DATABASE_DSN",
		"FEISHU_WEBHOOK",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Validate 检查必填项与取值范围
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return common.NewError(common.ErrCodeConfig, "GITHUB_TOKEN 环境变量未设置")
	}
	if len(c.Repositories) == 0 {
		return common.NewError(common.ErrCodeConfig, "没有需要检查的仓库")
	}
	if c.ResultsPath == "" || c.ReportPath == "" {
		return common.NewError(common.ErrCodeConfig, "RESULTS_PATH 与 REPORT_PATH 不能为空")
	}
	if c.RequestDelay < 0 {
		return common.NewError(common.ErrCodeConfig, "REQUEST_DELAY 不能为负数")
	}
	if c.RateLimitMaxAttempts < 1 {
		return common.NewError(common.ErrCodeConfig, "RATE_LIMIT_MAX_ATTEMPTS 至少为 1")
	}
	if c.RateLimitBuffer < 0 {
		return common.NewError(common.ErrCodeConfig, "RATE_LIMIT_BUFFER 不能为负数")
	}
	return nil
}

func repositoryList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultRepositories
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseRepositories 解析并去重仓库列表，保留首次出现的顺序
func ParseRepositories(items []string) ([]domain.Handle, error) {
	seen := make(map[string]bool, len(items))
	handles := make([]domain.Handle, 0, len(items))
	for _, item := range items {
		h, err := domain.ParseHandle(item)
		if err != nil {
			return nil, err
		}
		// GitHub 仓库名大小写不敏感
		key := strings.ToLower(h.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		handles = append(handles, h)
	}
	if len(handles) == 0 {
		return nil, fmt.Errorf("仓库列表为空")
	}
	return handles, nil
}
