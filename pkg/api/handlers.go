package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"TrendAgent/pkg/database"
	"TrendAgent/pkg/model"
	"TrendAgent/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultLimit = 50
	maxLimit     = 500
	dateLayout   = "2006-01-02"
)

type ContentReader interface {
	RecentByPlatform(ctx context.Context, platform model.Platform, since time.Time, limit int) ([]*model.Content, error)
}

type TrendReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Trend, error)
	Children(ctx context.Context, id uuid.UUID) ([]*model.Trend, error)
}

type MetricsReader interface {
	Series(ctx context.Context, trendID uuid.UUID, region string, from, to time.Time) ([]*model.TrendMetrics, error)
}

type AlertReader interface {
	Pending(ctx context.Context, limit int) ([]*model.Alert, error)
}

type ReportReader interface {
	GetByDate(ctx context.Context, date time.Time) (*model.DailyReport, error)
}

// Handlers API处理程序
type Handlers struct {
	monitor *monitor.Monitor
	content ContentReader
	trends  TrendReader
	metrics MetricsReader
	alerts  AlertReader
	reports ReportReader
}

// NewHandlers 创建新的API处理程序
func NewHandlers(
	mon *monitor.Monitor,
	content ContentReader,
	trends TrendReader,
	metrics MetricsReader,
	alerts AlertReader,
	reports ReportReader,
) *Handlers {
	return &Handlers{
		monitor: mon,
		content: content,
		trends:  trends,
		metrics: metrics,
		alerts:  alerts,
		reports: reports,
	}
}

// NewDBHandlers 使用数据库访问器创建处理程序
func NewDBHandlers(mon *monitor.Monitor, db *database.DB) *Handlers {
	return NewHandlers(mon, db.Content(), db.Trend(), db.Metrics(), db.Alert(), db.Report())
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 所有组件健康或未配置时才就绪
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	if !h.monitor.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": h.monitor.GetAllStatus(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// GetStatus 返回各组件状态
func (h *Handlers) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": h.monitor.GetAllStatus(),
	})
}

// GetRecentContent 查询某平台最近的内容
func (h *Handlers) GetRecentContent(c *gin.Context) {
	platform := model.Platform(c.Query("platform"))
	switch platform {
	case model.PlatformReddit, model.PlatformTikTok, model.PlatformYouTube:
	default:
		badRequest(c, "platform参数必须为 reddit、tiktok 或 youtube")
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "since参数必须为RFC3339时间")
			return
		}
		since = t
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	contents, err := h.content.RecentByPlatform(c.Request.Context(), platform, since, limit)
	if err != nil {
		respondError(c, "获取内容失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": contents,
	})
}

// GetTrend 获取单个趋势
func (h *Handlers) GetTrend(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	trend, err := h.trends.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "获取趋势失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": trend,
	})
}

// GetTrendMetrics 获取趋势指标时间序列，默认最近30天
func (h *Handlers) GetTrendMetrics(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			badRequest(c, "from参数格式应为 YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			badRequest(c, "to参数格式应为 YYYY-MM-DD")
			return
		}
		to = t
	}
	if to.Before(from) {
		badRequest(c, "to不能早于from")
		return
	}

	series, err := h.metrics.Series(c.Request.Context(), id, c.DefaultQuery("region", model.RegionGlobal), from, to)
	if err != nil {
		respondError(c, "获取趋势指标失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": series,
	})
}

// GetTrendChildren 获取子趋势
func (h *Handlers) GetTrendChildren(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	children, err := h.trends.Children(c.Request.Context(), id)
	if err != nil {
		respondError(c, "获取子趋势失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": children,
	})
}

// GetPendingAlerts 获取待发送的告警
func (h *Handlers) GetPendingAlerts(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	alerts, err := h.alerts.Pending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "获取告警失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": alerts,
	})
}

// GetReport 获取某日日报
func (h *Handlers) GetReport(c *gin.Context) {
	date, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		badRequest(c, "日期格式应为 YYYY-MM-DD")
		return
	}
	report, err := h.reports.GetByDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, "获取日报失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "无效的趋势ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseLimit(c *gin.Context) (int, bool) {
	v := c.Query("limit")
	if v == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit <= 0 || limit > maxLimit {
		badRequest(c, "limit参数必须在1到500之间")
		return 0, false
	}
	return limit, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": msg,
	})
}

func respondError(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, database.ErrNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{
		"error": msg + ": " + err.Error(),
	})
}
