package database

import (
	"context"
	"time"

	"TrendAgent/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MetricsDB struct {
	db *gorm.DB
}

func (d *DB) Metrics() *MetricsDB {
	return &MetricsDB{db: d.db}
}

// Create 插入每日指标，(趋势, 日期, 地区) 重复时返回 ErrDuplicate
func (m *MetricsDB) Create(ctx context.Context, metrics *model.TrendMetrics) error {
	return wrap("保存趋势指标失败", m.db.WithContext(ctx).Create(metrics).Error)
}

// Upsert 重新计算时覆盖同一 (趋势, 日期, 地区) 的指标
func (m *MetricsDB) Upsert(ctx context.Context, metrics *model.TrendMetrics) error {
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trend_id"}, {Name: "date"}, {Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mention_count", "unique_authors", "total_engagement", "wow_change",
			"avg_sentiment", "avg_purchase_intent", "platform_breakdown",
		}),
	}).Create(metrics).Error
	if err != nil {
		return wrap("更新趋势指标失败", err)
	}

	var stored model.TrendMetrics
	err = m.db.WithContext(ctx).
		Where("trend_id = ? AND date = ? AND region = ?", metrics.TrendID, metrics.Date, metrics.Region).
		First(&stored).Error
	if err != nil {
		return wrap("回读趋势指标失败", err)
	}
	*metrics = stored
	return nil
}

// Series 按日期升序返回某趋势在 [from, to] 内的指标
func (m *MetricsDB) Series(ctx context.Context, trendID uuid.UUID, region string, from, to time.Time) ([]*model.TrendMetrics, error) {
	if region == "" {
		region = model.RegionGlobal
	}
	var series []*model.TrendMetrics
	err := m.db.WithContext(ctx).
		Where("trend_id = ? AND region = ? AND date BETWEEN ? AND ?", trendID, region, model.Day(from), model.Day(to)).
		Order("date ASC").
		Find(&series).Error
	if err != nil {
		return nil, wrap("查询趋势指标失败", err)
	}
	return series, nil
}
