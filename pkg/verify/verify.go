package verify

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Status 单项检查结果
type Status string

const (
	StatusNotConfigured Status = "not_configured" // 可选服务未配置，视为通过
	StatusPass          Status = "pass"
	StatusFail          Status = "fail"
)

// DefaultTimeout 单项检查的超时时间
const DefaultTimeout = 15 * time.Second

// Result 单项检查结果
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// Passed 未配置与通过都算通过
func (r Result) Passed() bool {
	return r.Status == StatusPass || r.Status == StatusNotConfigured
}

func pass(format string, args ...interface{}) Result {
	return Result{Status: StatusPass, Message: fmt.Sprintf(format, args...)}
}

func notConfigured(format string, args ...interface{}) Result {
	return Result{Status: StatusNotConfigured, Message: fmt.Sprintf(format, args...)}
}

func fail(err error, format string, args ...interface{}) Result {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return Result{Status: StatusFail, Message: msg, Err: err}
}

// Check 一项检查
type Check struct {
	Name string
	Run  func(ctx context.Context) Result
}

// Runner 依次执行所有检查，不会因单项失败而中止
type Runner struct {
	Timeout time.Duration
}

// Run 执行检查，返回与 checks 顺序一致的结果
func (r *Runner) Run(ctx context.Context, checks []Check) Report {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	report := Report{Results: make([]Result, 0, len(checks))}
	for _, c := range checks {
		report.Results = append(report.Results, runOne(ctx, c, timeout))
	}
	return report
}

// runOne 把错误和panic都转换为失败结果
func runOne(ctx context.Context, c Check, timeout time.Duration) (res Result) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			log.Printf("检查 %s 发生panic: %v", c.Name, p)
			res = fail(fmt.Errorf("panic: %v", p), "检查异常")
		}
		res.Name = c.Name
		res.Duration = time.Since(start)
		res.At = start.UTC()
	}()

	return c.Run(ctx)
}

// Report 一次完整验证的结果
type Report struct {
	Results []Result `json:"results"`
}

// Passed 所有检查都通过
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// ExitCode 全部通过返回0，否则返回1
func (r Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

const rule = "=================================================="

// Print 输出每项检查的详情与汇总
func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "K-Beauty Trend Agent - Setup Verification")
	fmt.Fprintln(w, rule)

	for _, res := range r.Results {
		fmt.Fprintf(w, "\n[%s] %s %s (%s)\n", res.Name, icon(res.Status), res.Message, res.Duration.Round(time.Millisecond))
	}

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, rule)
	for _, res := range r.Results {
		fmt.Fprintf(w, "%s: %s\n", res.Name, summary(res.Status))
	}
	fmt.Fprintln(w, rule)
	if r.Passed() {
		fmt.Fprintln(w, "🎉 全部检查通过")
	} else {
		fmt.Fprintf(w, "⚠️  %s 检查失败，请修复后再继续\n", strings.Join(r.Failed(), ", "))
	}
}

// Failed 返回失败的检查名称
func (r Report) Failed() []string {
	var names []string
	for _, res := range r.Results {
		if !res.Passed() {
			names = append(names, res.Name)
		}
	}
	return names
}

func icon(s Status) string {
	switch s {
	case StatusPass:
		return "✅"
	case StatusNotConfigured:
		return "⚠️ "
	}
	return "❌"
}

func summary(s Status) string {
	switch s {
	case StatusPass:
		return "✅ PASS"
	case StatusNotConfigured:
		return "✅ PASS (not configured)"
	}
	return "❌ FAIL"
}
