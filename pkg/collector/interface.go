package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Source 内容采集源
type Source interface {
	// Name 采集源名称，如 reddit
	Name() string
	// Probe 使用已配置的凭证做一次最小的鉴权请求
	Probe(ctx context.Context) error
}

// Token OAuth访问令牌
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`

	// 部分平台在200响应中返回错误
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// doJSON 执行请求并解析JSON响应，非200视为错误
func doJSON(client *http.Client, req *http.Request, dest interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("执行HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API返回非200状态码: %d %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
