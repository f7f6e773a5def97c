package monitor

import (
	"sort"
	"sync"
	"time"

	"TrendAgent/pkg/verify"
)

// 组件状态
const (
	StatusUnknown   = "unknown"
	StatusHealthy   = "healthy"
	StatusSkipped   = "skipped" // 可选服务未配置
	StatusUnhealthy = "unhealthy"
)

// HealthStatus 健康状态
type HealthStatus struct {
	Component   string    `json:"component"`
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Message     string    `json:"message,omitempty"`
}

// Monitor 组件健康状态登记表
type Monitor struct {
	components map[string]*HealthStatus
	mutex      sync.RWMutex
	alertFunc  func(component, status, message string)
}

// NewMonitor 创建新的监控系统
func NewMonitor(alertFunc func(component, status, message string)) *Monitor {
	return &Monitor{
		components: make(map[string]*HealthStatus),
		alertFunc:  alertFunc,
	}
}

// RegisterComponent 注册组件
func (m *Monitor) RegisterComponent(component string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.components[component]; exists {
		return
	}
	m.components[component] = &HealthStatus{
		Component:   component,
		Status:      StatusUnknown,
		LastChecked: time.Now(),
	}
}

// UpdateStatus 更新组件状态
func (m *Monitor) UpdateStatus(component, status, message string) {
	m.mutex.Lock()
	if _, exists := m.components[component]; !exists {
		m.components[component] = &HealthStatus{
			Component: component,
		}
	}

	oldStatus := m.components[component].Status
	m.components[component].Status = status
	m.components[component].LastChecked = time.Now()
	m.components[component].Message = message
	alert := oldStatus != status && status == StatusUnhealthy && m.alertFunc != nil
	m.mutex.Unlock()

	// 状态变为不健康时触发告警，回调在锁外执行
	if alert {
		m.alertFunc(component, status, message)
	}
}

// RecordReport 把一次环境检查的结果写入登记表
func (m *Monitor) RecordReport(report verify.Report) {
	for _, res := range report.Results {
		m.UpdateStatus(res.Name, statusFor(res.Status), res.Message)
	}
}

func statusFor(s verify.Status) string {
	switch s {
	case verify.StatusPass:
		return StatusHealthy
	case verify.StatusNotConfigured:
		return StatusSkipped
	}
	return StatusUnhealthy
}

// GetStatus 获取组件状态
func (m *Monitor) GetStatus(component string) *HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if status, exists := m.components[component]; exists {
		copied := *status
		return &copied
	}

	return nil
}

// GetAllStatus 获取所有组件状态，按组件名排序
func (m *Monitor) GetAllStatus() []*HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	statuses := make([]*HealthStatus, 0, len(m.components))
	for _, status := range m.components {
		copied := *status
		statuses = append(statuses, &copied)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Component < statuses[j].Component
	})

	return statuses
}

// Ready 所有已注册组件都为健康或跳过，且至少有一个组件
func (m *Monitor) Ready() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if len(m.components) == 0 {
		return false
	}
	for _, status := range m.components {
		if status.Status != StatusHealthy && status.Status != StatusSkipped {
			return false
		}
	}
	return true
}
