package github

import (
	"context"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// NewClient 初始化带令牌的 GitHub 客户端
func NewClient(token string) *github.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return github.NewClient(tc)
}
