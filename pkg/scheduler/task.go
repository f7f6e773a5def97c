package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"TrendAgent/pkg/monitor"
	"TrendAgent/pkg/verify"

	"github.com/robfig/cron/v3"
)

// LastReportKey 最近一次环境检查结果在缓存中的键
const LastReportKey = "trendagent:verify:last"

// ReportStore 保存检查结果，通常为Redis缓存
type ReportStore interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// VerifyFunc 执行一次环境检查
type VerifyFunc func(ctx context.Context) verify.Report

// Scheduler 任务调度器
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	verify   VerifyFunc
	monitor  *monitor.Monitor
	store    ReportStore

	mu      sync.Mutex
	running bool
}

// NewScheduler 创建任务调度器，store 可以为nil
func NewScheduler(schedule string, fn VerifyFunc, mon *monitor.Monitor, store ReportStore) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		verify:   fn,
		monitor:  mon,
		store:    store,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	// 定期重新检查外部服务状态
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("无效的调度表达式 %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop 停止调度器，等待正在执行的任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce 执行一次检查并记录结果，上一次尚未结束时跳过
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("上一次环境检查尚未结束，跳过")
		return false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Println("检查外部服务健康状态...")
	report := s.verify(ctx)
	s.monitor.RecordReport(report)

	if s.store != nil {
		if err := s.store.SetJSON(ctx, LastReportKey, report, 0); err != nil {
			log.Printf("缓存检查结果失败: %v", err)
		}
	}
	if failed := report.Failed(); len(failed) > 0 {
		log.Printf("环境检查未通过: %v", failed)
	}
	return true
}
