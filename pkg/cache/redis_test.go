package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"TrendAgent/pkg/config"
)

func TestParseURL(t *testing.T) {
	opts, err := ParseURL("redis://:secret@localhost:6380/2")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("unexpected options: addr=%s db=%d", opts.Addr, opts.DB)
	}

	for _, bad := range []string{"", "http://localhost:6379", "redis://localhost:6379/notanumber"} {
		if _, err := ParseURL(bad); err == nil {
			t.Fatalf("ParseURL(%q) should fail", bad)
		}
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(config.RedisConfig{URL: "mysql://localhost"}); err == nil {
		t.Fatalf("New should reject a non-redis URL")
	}
}

func TestPingUnreachable(t *testing.T) {
	c, err := New(config.RedisConfig{URL: "redis://127.0.0.1:1/0"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err == nil {
		t.Fatalf("Ping to a closed port should fail")
	}
}

// 需要真实Redis，未设置 TEST_REDIS_URL 时跳过
func TestJSONRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL 未设置")
	}
	c, err := New(config.RedisConfig{URL: url})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	var missing map[string]int
	found, err := c.GetJSON(ctx, "trendagent:test:missing", &missing)
	if err != nil || found {
		t.Fatalf("GetJSON(missing) = %v, %v", found, err)
	}

	in := map[string]int{"reddit": 3}
	if err := c.SetJSON(ctx, "trendagent:test:key", in, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var out map[string]int
	found, err = c.GetJSON(ctx, "trendagent:test:key", &out)
	if err != nil || !found || out["reddit"] != 3 {
		t.Fatalf("GetJSON = %v, %v, %v", out, found, err)
	}
}
