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

const TikTokBaseURL = "https://open.tiktokapis.com"

// TikTokClient TikTok开放平台客户端
type TikTokClient struct {
	ClientKey    string
	ClientSecret string
	UserAgent    string
	BaseURL      string
	Client       *http.Client
}

// NewTikTokClient 根据配置创建客户端
func NewTikTokClient(cfg config.SourceConfig) *TikTokClient {
	return &TikTokClient{
		ClientKey:    cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		UserAgent:    cfg.UserAgent,
		BaseURL:      TikTokBaseURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *TikTokClient) Name() string {
	return "tiktok"
}

// Token 获取 client access token
func (c *TikTokClient) Token(ctx context.Context) (*Token, error) {
	form := url.Values{
		"client_key":    {c.ClientKey},
		"client_secret": {c.ClientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.BaseURL, "/")+"/v2/oauth/token/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	var token Token
	if err := doJSON(c.Client, req, &token); err != nil {
		return nil, fmt.Errorf("获取TikTok令牌失败: %w", err)
	}
	if token.Error != "" {
		return nil, fmt.Errorf("获取TikTok令牌失败: %s %s", token.Error, token.ErrorDescription)
	}
	if token.AccessToken == "" {
		return nil, errors.New("获取TikTok令牌失败: 响应中没有 access_token")
	}
	return &token, nil
}

func (c *TikTokClient) Probe(ctx context.Context) error {
	_, err := c.Token(ctx)
	return err
}
