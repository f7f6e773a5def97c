package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"TrendAgent/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB PostgreSQL连接池
// 进程内只创建一个，每个工作单元从中取得会话
type DB struct {
	db *gorm.DB
}

// Open 创建连接池并测试连接
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         newLogger(cfg.LogLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接池失败: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxOpenConns(cfg.PoolSize)
	sqlDB.SetMaxIdleConns(cfg.PoolSize)
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	// 测试连接
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("测试数据库连接失败: %w", err)
	}

	return &DB{db: db}, nil
}

// newLogger SQL日志通过标准库log输出
func newLogger(level string) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  parseLogLevel(level),
			IgnoreRecordNotFoundError: true,
		},
	)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Gorm 返回底层gorm句柄
func (d *DB) Gorm() *gorm.DB {
	return d.db
}

// Ping 在一个会话中执行 SELECT 1
func (d *DB) Ping(ctx context.Context) error {
	var one int
	if err := d.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return fmt.Errorf("执行 SELECT 1 失败: %w", err)
	}
	if one != 1 {
		return fmt.Errorf("SELECT 1 返回了 %d", one)
	}
	return nil
}

// InTx 在事务中执行fn，返回nil时提交，返回错误或panic时回滚
// fn 中通过 tx 取得的访问器都在同一事务内执行
func (d *DB) InTx(ctx context.Context, fn func(tx *DB) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{db: tx})
	})
}

// Close 关闭连接池
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
