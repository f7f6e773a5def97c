// pkg/model/alert.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AlertType 告警类型
type AlertType string

const (
	AlertTypeNewTrend       AlertType = "new_trend"
	AlertTypeSentimentShift AlertType = "sentiment_shift"
	AlertTypeVelocitySpike  AlertType = "velocity_spike"
	AlertTypeStageChange    AlertType = "stage_change"
)

// AlertStatus 告警状态，只能单向推进 pending -> sent -> acknowledged
type AlertStatus string

const (
	AlertStatusPending      AlertStatus = "pending"
	AlertStatusSent         AlertStatus = "sent"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
)

func (s AlertStatus) rank() int {
	switch s {
	case AlertStatusPending:
		return 0
	case AlertStatusSent:
		return 1
	case AlertStatusAcknowledged:
		return 2
	}
	return -1
}

// Valid 判断状态是否合法
func (s AlertStatus) Valid() bool {
	return s.rank() >= 0
}

// CanTransitionTo 状态只能逐级向前推进，不允许跳级、回退或原地迁移
func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() == s.rank()+1
}

// Alert 面向业务方的告警
type Alert struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TrendID     *uuid.UUID `gorm:"type:uuid" json:"trend_id,omitempty"`
	AlertType   AlertType  `gorm:"type:varchar(50);not null" json:"alert_type"`
	TriggeredAt time.Time  `json:"triggered_at"`

	// 内容
	Title   string            `gorm:"type:varchar(500)" json:"title"`
	TitleKo string            `gorm:"type:varchar(500)" json:"title_ko,omitempty"`
	Payload datatypes.JSONMap `gorm:"type:jsonb" json:"payload,omitempty"`

	// 状态
	Status         AlertStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	AcknowledgedBy string      `gorm:"type:varchar(100)" json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at,omitempty"`

	Trend *Trend `gorm:"foreignKey:TrendID" json:"-"`
}

func (Alert) TableName() string {
	return "alerts"
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = AlertStatusPending
	}
	return nil
}
