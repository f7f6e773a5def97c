// pkg/database/alert.go
package database

import (
	"context"
	"fmt"
	"time"

	"TrendAgent/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertDB struct {
	db *gorm.DB
}

func (d *DB) Alert() *AlertDB {
	return &AlertDB{db: d.db}
}

// Create 保存新告警，状态总是 pending
func (a *AlertDB) Create(ctx context.Context, alert *model.Alert) error {
	if alert.AlertType == "" {
		return fmt.Errorf("告警类型为空: %w", ErrInvalid)
	}
	alert.Status = model.AlertStatusPending
	alert.AcknowledgedBy = ""
	alert.AcknowledgedAt = nil
	return wrap("保存告警失败", a.db.WithContext(ctx).Create(alert).Error)
}

func (a *AlertDB) GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	var alert model.Alert
	if err := a.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, wrap("获取告警失败", err)
	}
	return &alert, nil
}

// MarkSent pending -> sent
func (a *AlertDB) MarkSent(ctx context.Context, id uuid.UUID) error {
	return a.transition(ctx, id, model.AlertStatusSent, map[string]interface{}{})
}

// Acknowledge 确认告警，告警必须已发送
func (a *AlertDB) Acknowledge(ctx context.Context, id uuid.UUID, actor string) error {
	return a.transition(ctx, id, model.AlertStatusAcknowledged, map[string]interface{}{
		"acknowledged_by": actor,
		"acknowledged_at": time.Now().UTC(),
	})
}

// transition 条件更新：只有状态仍为读到的旧值时才写入，避免并发回退
func (a *AlertDB) transition(ctx context.Context, id uuid.UUID, to model.AlertStatus, updates map[string]interface{}) error {
	current, err := a.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(to) {
		return fmt.Errorf("告警 %s 从 %s 到 %s: %w", id, current.Status, to, ErrInvalidTransition)
	}

	updates["status"] = to
	result := a.db.WithContext(ctx).Model(&model.Alert{}).
		Where("id = ? AND status = ?", id, current.Status).
		Updates(updates)
	if result.Error != nil {
		return wrap("更新告警状态失败", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("告警 %s 状态已被并发修改: %w", id, ErrInvalidTransition)
	}
	return nil
}

// Pending 按触发时间升序返回待发送的告警
func (a *AlertDB) Pending(ctx context.Context, limit int) ([]*model.Alert, error) {
	var alerts []*model.Alert
	err := a.db.WithContext(ctx).
		Where("status = ?", model.AlertStatusPending).
		Order("triggered_at ASC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, wrap("查询待发送告警失败", err)
	}
	return alerts, nil
}
