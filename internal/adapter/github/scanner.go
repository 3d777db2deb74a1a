package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bip353-tracker/internal/adapter/filter"
	"bip353-tracker/internal/common"
	"bip353-tracker/internal/domain"

	"github.com/google/go-github/v53/github"
	"go.uber.org/zap"
)

const issuesPerPage = 100

// Scanner 实现了 port.Scanner 接口：在 README、源码和 issue 中搜索 BIP-353
type Scanner struct {
	client *github.Client
	log    *zap.Logger
}

// NewScanner 创建扫描器
func NewScanner(client *github.Client, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{client: client, log: log}
}

// Scan 扫描单个仓库
// 仓库元数据获取失败、遇到限流或运行被取消时返回错误；其他子请求失败只记录警告，证据可能不完整
func (s *Scanner) Scan(ctx context.Context, handle domain.Handle) (*domain.ScanOutcome, error) {
	log := s.log.With(zap.String("repo", handle.String()))
	log.Info("检查仓库")

	repo, _, err := s.client.Repositories.Get(ctx, handle.Owner, handle.Name)
	if err != nil {
		if abortsScan(err) {
			return nil, err
		}
		return nil, common.WrapError(common.ErrCodeGitHubAPI, "fetch repository metadata", err)
	}

	outcome := &domain.ScanOutcome{
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		URL:         repo.GetHTMLURL(),
		Stars:       repo.GetStargazersCount(),
		LastUpdated: repo.GetUpdatedAt().Time,
		Evidence:    []string{},
	}

	// 1. README
	mentioned, err := s.readmeMentions(ctx, handle)
	if err != nil {
		if abortsScan(err) {
			return nil, err
		}
		log.Warn("无法获取 README", zap.Error(err))
	}
	if mentioned {
		outcome.Evidence = append(outcome.Evidence, "BIP-353 mentioned in README")
	}

	// 2. 源码
	codeFiles, err := s.searchCode(ctx, handle, log)
	if err != nil {
		if abortsScan(err) {
			return nil, err
		}
		log.Warn("无法搜索代码", zap.Error(err))
	}
	if len(codeFiles) > 0 {
		outcome.CodeFiles = codeFiles
		outcome.Evidence = append(outcome.Evidence,
			fmt.Sprintf("BIP-353 mentioned in code files: %s", strings.Join(codeFiles, ", ")))
	}

	// 3. issue / PR
	openCount, _, err := s.matchingIssues(ctx, handle, "open")
	if err != nil {
		if abortsScan(err) {
			return nil, err
		}
		log.Warn("无法获取 open issues", zap.Error(err))
	}
	if openCount > 0 {
		outcome.Evidence = append(outcome.Evidence,
			fmt.Sprintf("Found %d open issues/PRs related to BIP-353", openCount))
	}

	closedCount, closedTitles, err := s.matchingIssues(ctx, handle, "closed")
	if err != nil {
		if abortsScan(err) {
			return nil, err
		}
		log.Warn("无法获取 closed issues", zap.Error(err))
	}
	if closedCount > 0 {
		outcome.ClosedIssueTitles = closedTitles
		outcome.Evidence = append(outcome.Evidence,
			fmt.Sprintf("Found %d closed issues/PRs related to BIP-353", closedCount))
	}

	// 运行被中断时证据不完整，不能当作 Not Supported
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcome, nil
}

// abortsScan 限流或上下文取消时整个扫描作废，其余子请求失败只跳过
func abortsScan(err error) bool {
	return IsRateLimit(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// readmeMentions 默认分支 README 中是否提到关键字
func (s *Scanner) readmeMentions(ctx context.Context, handle domain.Handle) (bool, error) {
	readme, _, err := s.client.Repositories.GetReadme(ctx, handle.Owner, handle.Name, nil)
	if err != nil {
		return false, err
	}
	content, err := readme.GetContent()
	if err != nil {
		return false, fmt.Errorf("解码 README 失败: %w", err)
	}
	return filter.MentionsKeyword(content), nil
}

// searchCode 只从固定的顶层目录开始递归，返回命中关键字的文件路径
func (s *Scanner) searchCode(ctx context.Context, handle domain.Handle, log *zap.Logger) ([]string, error) {
	_, root, _, err := s.client.Repositories.GetContents(ctx, handle.Owner, handle.Name, "", nil)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, entry := range root {
		if entry.GetType() != "dir" || !filter.IsSeedDir(entry.GetName()) {
			continue
		}
		if err := s.walk(ctx, handle, entry.GetPath(), &matches, log); err != nil {
			if abortsScan(err) {
				return matches, err
			}
			log.Warn("无法访问目录", zap.String("path", entry.GetPath()), zap.Error(err))
		}
	}
	return matches, nil
}

// walk 递归遍历目录；子目录和文件的失败记录后跳过，限流错误向上传递
func (s *Scanner) walk(ctx context.Context, handle domain.Handle, dir string, matches *[]string, log *zap.Logger) error {
	_, entries, _, err := s.client.Repositories.GetContents(ctx, handle.Owner, handle.Name, dir, nil)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		switch entry.GetType() {
		case "dir":
			if err := s.walk(ctx, handle, entry.GetPath(), matches, log); err != nil {
				if abortsScan(err) {
					return err
				}
				log.Warn("无法访问目录", zap.String("path", entry.GetPath()), zap.Error(err))
			}
		case "file":
			if !filter.IsSourceFile(entry.GetName()) {
				continue
			}
			mentioned, err := s.fileMentions(ctx, handle, entry.GetPath())
			if err != nil {
				if abortsScan(err) {
					return err
				}
				log.Warn("无法读取文件", zap.String("path", entry.GetPath()), zap.Error(err))
				continue
			}
			if mentioned {
				*matches = append(*matches, entry.GetPath())
			}
		}
	}
	return nil
}

// fileMentions 目录列表不带文件内容，需要单独获取
func (s *Scanner) fileMentions(ctx context.Context, handle domain.Handle, path string) (bool, error) {
	file, _, _, err := s.client.Repositories.GetContents(ctx, handle.Owner, handle.Name, path, nil)
	if err != nil {
		return false, err
	}
	if file == nil {
		return false, errors.New("路径不是文件")
	}
	content, err := file.GetContent()
	if err != nil {
		return false, fmt.Errorf("解码文件失败: %w", err)
	}
	return filter.MentionsKeyword(content), nil
}

// matchingIssues 统计指定状态下提到关键字的 issue/PR（不按标签过滤），返回数量与标题
func (s *Scanner) matchingIssues(ctx context.Context, handle domain.Handle, state string) (int, []string, error) {
	opts := &github.IssueListByRepoOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: issuesPerPage},
	}

	var titles []string
	for {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, handle.Owner, handle.Name, opts)
		if err != nil {
			return len(titles), titles, err
		}
		for _, issue := range issues {
			if filter.IssueMentionsKeyword(issue.GetTitle(), issue.GetBody()) {
				titles = append(titles, issue.GetTitle())
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return len(titles), titles, nil
}
