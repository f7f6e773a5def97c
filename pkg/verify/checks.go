package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"TrendAgent/pkg/cache"
	"TrendAgent/pkg/collector"
	"TrendAgent/pkg/config"
	"TrendAgent/pkg/database"
	"TrendAgent/pkg/llm"

	"github.com/jackc/pgx/v5"
)

// Database 数据库检查需要的能力
type Database interface {
	Ping(ctx context.Context) error
	CountTables(ctx context.Context) (int64, error)
}

// Pinger 缓存检查需要的能力
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelLister 分析服务检查需要的能力
type ModelLister interface {
	ListModels(ctx context.Context) ([]llm.Model, error)
}

// SourceProbe 一个采集源及其是否配置了凭证
type SourceProbe struct {
	Name       string
	Configured bool
	Source     collector.Source
}

// Env 检查所依赖的外部资源，按需创建，同一次验证内复用
type Env struct {
	OpenDatabase      func(ctx context.Context) (Database, error)
	OpenCache         func() (Pinger, error)
	NewAnalysisClient func() (ModelLister, error)
	Sources           []SourceProbe

	dbOnce sync.Once
	db     Database
	dbErr  error

	cacheOnce sync.Once
	cache     Pinger
	cacheErr  error
}

// NewEnv 使用真实客户端构建检查环境
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		OpenDatabase: func(ctx context.Context) (Database, error) {
			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return nil, err
			}
			return db, nil
		},
		OpenCache: func() (Pinger, error) {
			c, err := cache.New(cfg.Redis)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		NewAnalysisClient: func() (ModelLister, error) {
			c, err := llm.NewClient(cfg.Anthropic.BaseURL, cfg.Anthropic.APIKey, cfg.Anthropic.Timeout)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		Sources: []SourceProbe{
			{Name: "Reddit", Configured: cfg.Reddit.Configured(), Source: collector.NewRedditClient(cfg.Reddit, cfg.Collection.TargetSubreddits)},
			{Name: "TikTok", Configured: cfg.TikTok.Configured(), Source: collector.NewTikTokClient(cfg.TikTok)},
		},
	}
}

func (e *Env) database(ctx context.Context) (Database, error) {
	e.dbOnce.Do(func() {
		e.db, e.dbErr = e.OpenDatabase(ctx)
	})
	return e.db, e.dbErr
}

func (e *Env) redis() (Pinger, error) {
	e.cacheOnce.Do(func() {
		e.cache, e.cacheErr = e.OpenCache()
	})
	return e.cache, e.cacheErr
}

// Close 关闭检查过程中打开的连接
func (e *Env) Close() error {
	var errs []error
	if c, ok := e.db.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := e.cache.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// SetupChecks 按固定顺序返回六项环境检查
// loadErr 为加载配置时的错误，由 Imports 检查报告，其余检查照常执行
func SetupChecks(cfg *config.Config, loadErr error, env *Env) []Check {
	return []Check{
		{Name: "Imports", Run: func(ctx context.Context) Result { return checkImports(cfg, loadErr) }},
		{Name: "Database", Run: func(ctx context.Context) Result { return checkDatabase(ctx, env) }},
		{Name: "Redis", Run: func(ctx context.Context) Result { return checkRedis(ctx, env) }},
		{Name: "Tables", Run: func(ctx context.Context) Result { return checkTables(ctx, env) }},
		{Name: "Anthropic", Run: func(ctx context.Context) Result { return checkAnthropic(ctx, cfg, env) }},
		{Name: "Reddit", Run: func(ctx context.Context) Result { return checkSources(ctx, env.Sources) }},
	}
}

// CheckNames 六项检查的名称，按执行顺序
func CheckNames() []string {
	checks := SetupChecks(nil, nil, nil)
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name)
	}
	return names
}

// checkImports 配置可用，且客户端库能解析连接串
func checkImports(cfg *config.Config, loadErr error) Result {
	if loadErr != nil {
		return fail(loadErr, "配置加载失败")
	}
	if err := cfg.Validate(); err != nil {
		return fail(err, "配置无效")
	}
	if _, err := pgx.ParseConfig(cfg.Database.URL); err != nil {
		return fail(err, "数据库连接串无法解析")
	}
	if _, err := cache.ParseURL(cfg.Redis.URL); err != nil {
		return fail(err, "Redis连接串无法解析")
	}
	return pass("配置与客户端库就绪")
}

func checkDatabase(ctx context.Context, env *Env) Result {
	db, err := env.database(ctx)
	if err != nil {
		return fail(err, "数据库连接失败")
	}
	if err := db.Ping(ctx); err != nil {
		return fail(err, "数据库连接失败")
	}
	return pass("数据库连接成功")
}

func checkRedis(ctx context.Context, env *Env) Result {
	c, err := env.redis()
	if err != nil {
		return fail(err, "Redis连接失败")
	}
	if err := c.Ping(ctx); err != nil {
		return fail(err, "Redis连接失败")
	}
	return pass("Redis连接成功")
}

func checkTables(ctx context.Context, env *Env) Result {
	db, err := env.database(ctx)
	if err != nil {
		return fail(err, "表检查失败")
	}
	count, err := db.CountTables(ctx)
	if err != nil {
		return fail(err, "表检查失败")
	}
	want := len(database.TableNames())
	if count < int64(want) {
		return fail(nil, "期望至少 %d 张表，实际 %d 张", want, count)
	}
	return pass("数据库共有 %d 张表", count)
}

func checkAnthropic(ctx context.Context, cfg *config.Config, env *Env) Result {
	if !cfg.Anthropic.Configured() {
		return notConfigured("Anthropic API密钥未设置（稍后添加）")
	}
	client, err := env.NewAnalysisClient()
	if err != nil {
		return fail(err, "Anthropic客户端初始化失败")
	}
	models, err := client.ListModels(ctx)
	if err != nil {
		return fail(err, "Anthropic API密钥验证失败")
	}
	return pass("Anthropic客户端初始化成功，可用模型 %d 个", len(models))
}

// checkSources 已配置的采集源必须全部可用，全部未配置视为未配置
func checkSources(ctx context.Context, sources []SourceProbe) Result {
	var ok []string
	var errs []error
	for _, s := range sources {
		if !s.Configured {
			continue
		}
		if err := s.Source.Probe(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		ok = append(ok, s.Name)
	}

	switch {
	case len(errs) > 0:
		return fail(errors.Join(errs...), "采集源API连接失败")
	case len(ok) == 0:
		return notConfigured("采集源凭证未设置（稍后添加）")
	}
	return pass("采集源API连接成功: %s", strings.Join(ok, ", "))
}

// Run 使用真实客户端执行全部环境检查
func Run(ctx context.Context, cfg *config.Config, loadErr error) Report {
	env := NewEnv(cfg)
	defer env.Close()

	runner := &Runner{}
	return runner.Run(ctx, SetupChecks(cfg, loadErr, env))
}
