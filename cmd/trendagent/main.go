package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TrendAgent/pkg/api"
	"TrendAgent/pkg/cache"
	"TrendAgent/pkg/config"
	"TrendAgent/pkg/database"
	"TrendAgent/pkg/monitor"
	"TrendAgent/pkg/scheduler"
	"TrendAgent/pkg/verify"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用环境变量")
	}

	root := &cli.Command{
		Name:  "trendagent",
		Usage: "K-Beauty Trend Agent 数据库与环境管理",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML配置文件路径",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			initDatabaseCommand(),
			dropDatabaseCommand(),
			verifySetupCommand(),
			serveCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, nil
}

func initDatabaseCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-database",
		Usage: "创建缺失的表和索引（可重复执行）",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			log.Println("正在创建数据库表...")
			if err := db.CreateAll(ctx); err != nil {
				return err
			}
			log.Println("✅ 数据库表创建完成")
			return nil
		},
	}
}

func dropDatabaseCommand() *cli.Command {
	return &cli.Command{
		Name:  "drop-database",
		Usage: "删除全部表（数据不可恢复）",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Usage: "确认删除"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if !c.Bool("yes") {
				return errors.New("删除全部表需要 --yes 确认")
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			log.Println("⚠️  正在删除全部数据库表...")
			if err := db.DropAll(ctx); err != nil {
				return err
			}
			log.Println("数据库表已删除")
			return nil
		},
	}
}

func verifySetupCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify-setup",
		Usage: "检查数据库、Redis及外部服务是否就绪",
		Action: func(ctx context.Context, c *cli.Command) error {
			// 配置加载与校验错误由 Imports 检查报告，其余检查使用可用部分继续
			cfg, loadErr := config.LoadUnchecked(c.String("config"))

			report := verify.Run(ctx, cfg, loadErr)
			report.Print(os.Stdout)
			if code := report.ExitCode(); code != 0 {
				return cli.Exit("", code)
			}
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动只读API并定期检查外部服务",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var store scheduler.ReportStore
	if rc, err := cache.New(cfg.Redis); err != nil {
		log.Printf("Redis不可用，检查结果不会缓存: %v", err)
	} else {
		defer rc.Close()
		store = rc
	}

	mon := monitor.NewMonitor(func(component, status, message string) {
		log.Printf("🚨 组件 %s 状态变为 %s: %s", component, status, message)
	})
	for _, name := range verify.CheckNames() {
		mon.RegisterComponent(name)
	}

	sched := scheduler.NewScheduler(cfg.Monitor.Schedule, func(ctx context.Context) verify.Report {
		return verify.Run(ctx, cfg, nil)
	}, mon, store)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()
	go sched.RunOnce(ctx)

	server := api.NewServer(cfg.API.Port, cfg.API.ReadTimeout, cfg.API.WriteTimeout)
	server.SetupRoutes(api.NewDBHandlers(mon, db))
	return server.Run(ctx)
}
