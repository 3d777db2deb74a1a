package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bip353-tracker/internal/adapter/report"
	"bip353-tracker/internal/common"
	"bip353-tracker/internal/domain"

	"go.uber.org/zap"
)

// Notifier 实现了 port.Notifier 接口，把运行汇总推送到飞书机器人
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	log        *zap.Logger
}

func NewNotifier(webhook string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	if webhook == "" {
		log.Warn("飞书 Webhook 为空，推送功能将无法工作")
	}
	return &Notifier{
		webhookURL: webhook,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// NotifySummary 发送飞书卡片消息 (Schema 2.0)，内容为各状态计数和已支持的仓库
func (n *Notifier) NotifySummary(ctx context.Context, runID string, results []*domain.RepositoryResult) error {
	if n.webhookURL == "" {
		return common.NewError(common.ErrCodeNotification, "webhook URL is empty")
	}

	s := domain.Summarize(results)
	title := fmt.Sprintf("BIP-353 支持情况: %d/%d 个项目已支持", s.Supported, len(results))

	payload := map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"schema": "2.0",
			"config": map[string]interface{}{
				"update_multi": true,
			},
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": title,
				},
				"template": headerTemplate(s),
			},
			"body": map[string]interface{}{
				"direction": "vertical",
				"elements": []map[string]interface{}{
					{
						"tag":       "markdown",
						"content":   summaryMarkdown(s),
						"text_size": "normal",
					},
					{
						"tag":       "markdown",
						"content":   supportedMarkdown(results),
						"text_size": "normal",
					},
					{
						"tag":       "markdown",
						"content":   fmt.Sprintf("运行 ID: %s", runID),
						"text_size": "notation",
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "encode card", err)
	}

	// 发送请求 (带重试机制)
	err = common.Do(ctx, func() error {
		return n.post(ctx, body)
	},
		common.WithMaxRetries(3),
		common.WithInitialDelay(500*time.Millisecond),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "send webhook", err)
	}

	n.log.Info("已推送运行汇总", zap.String("run_id", runID))
	return nil
}

func (n *Notifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu API status %d", resp.StatusCode)
	}
	return nil
}

func headerTemplate(s domain.Summary) string {
	switch {
	case s.Errors > 0:
		return "orange"
	case s.Supported > 0:
		return "green"
	default:
		return "blue"
	}
}

func summaryMarkdown(s domain.Summary) string {
	return fmt.Sprintf("**Supported:** %d  |  **In Progress:** %d  |  **Not Supported:** %d  |  **Error:** %d",
		s.Supported, s.InProgress, s.NotSupported, s.Errors)
}

// supportedMarkdown 列出已支持的仓库，顺序与报表一致
func supportedMarkdown(results []*domain.RepositoryResult) string {
	var lines []string
	for _, r := range report.Sorted(results) {
		if r.Status != domain.StatusSupported {
			continue
		}
		lines = append(lines, fmt.Sprintf("- [%s](%s) ⭐ %d", r.FullName, r.URL, r.Stars))
	}
	if len(lines) == 0 {
		return "暂无项目支持 BIP-353"
	}
	return "**已支持:**\n" + strings.Join(lines, "\n")
}
