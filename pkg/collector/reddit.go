package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TrendAgent/pkg/config"
)

const (
	RedditAuthURL = "https://www.reddit.com"
	RedditAPIURL  = "https://oauth.reddit.com"
)

// RedditClient Reddit API客户端（仅应用级授权）
type RedditClient struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	AuthURL      string
	APIURL       string
	Subreddits   []string
	Client       *http.Client
}

// Subreddit 版块信息
type Subreddit struct {
	DisplayName       string `json:"display_name"`
	Subscribers       int64  `json:"subscribers"`
	PublicDescription string `json:"public_description"`
}

type subredditResponse struct {
	Kind string    `json:"kind"`
	Data Subreddit `json:"data"`
}

// NewRedditClient 根据配置创建客户端
func NewRedditClient(cfg config.SourceConfig, subreddits []string) *RedditClient {
	return &RedditClient{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		UserAgent:    cfg.UserAgent,
		AuthURL:      RedditAuthURL,
		APIURL:       RedditAPIURL,
		Subreddits:   subreddits,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *RedditClient) Name() string {
	return "reddit"
}

// Token 以 client_credentials 方式获取访问令牌
func (c *RedditClient) Token(ctx context.Context) (*Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.AuthURL, "/")+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.UserAgent)

	var token Token
	if err := doJSON(c.Client, req, &token); err != nil {
		return nil, fmt.Errorf("获取Reddit令牌失败: %w", err)
	}
	if token.Error != "" {
		return nil, fmt.Errorf("获取Reddit令牌失败: %s", token.Error)
	}
	if token.AccessToken == "" {
		return nil, errors.New("获取Reddit令牌失败: 响应中没有 access_token")
	}
	return &token, nil
}

// Subreddit 读取版块信息
func (c *RedditClient) Subreddit(ctx context.Context, token *Token, name string) (*Subreddit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.APIURL, "/")+"/r/"+url.PathEscape(name)+"/about", nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+token.AccessToken)
	req.Header.Set("User-Agent", c.UserAgent)

	var resp subredditResponse
	if err := doJSON(c.Client, req, &resp); err != nil {
		return nil, fmt.Errorf("读取 r/%s 失败: %w", name, err)
	}
	// 不存在的版块不会返回 t5
	if resp.Kind != "t5" {
		return nil, fmt.Errorf("r/%s 不存在", name)
	}
	return &resp.Data, nil
}

// Probe 获取令牌并读取第一个目标版块
func (c *RedditClient) Probe(ctx context.Context) error {
	if len(c.Subreddits) == 0 {
		return errors.New("没有配置目标版块")
	}
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}
	_, err = c.Subreddit(ctx, token, c.Subreddits[0])
	return err
}
