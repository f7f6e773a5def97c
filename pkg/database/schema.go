package database

import (
	"context"
	"fmt"
	"log"

	"TrendAgent/pkg/model"
)

// tableSpec 一张表及其命名索引
type tableSpec struct {
	model   interface{}
	table   string
	indexes []string
}

// schema 按依赖顺序排列，被引用的表在前
var schema = []tableSpec{
	{&model.Content{}, "content", []string{"uq_content_source_url", "ix_content_platform_published", "ix_content_collected_at"}},
	{&model.ContentEntity{}, "content_entities", []string{"uq_content_entity", "ix_content_entity_type_id"}},
	{&model.Trend{}, "trends", nil},
	{&model.TrendRelationship{}, "trend_relationships", []string{"uq_trend_rel"}},
	{&model.TrendMetrics{}, "trend_metrics", []string{"uq_trend_metrics", "ix_trend_metrics_date"}},
	{&model.BrandTopicShare{}, "brand_topic_share", []string{"uq_brand_topic", "ix_brand_topic_brand"}},
	{&model.Alert{}, "alerts", nil},
	{&model.DailyReport{}, "daily_reports", []string{"uq_daily_report_date"}},
}

// Models 返回全部模型，按依赖顺序
func Models() []interface{} {
	models := make([]interface{}, 0, len(schema))
	for _, s := range schema {
		models = append(models, s.model)
	}
	return models
}

// TableNames 返回全部表名，按依赖顺序
func TableNames() []string {
	names := make([]string, 0, len(schema))
	for _, s := range schema {
		names = append(names, s.table)
	}
	return names
}

// CreateAll 创建缺失的表和索引，已存在的表不做修改，可重复执行
func (d *DB) CreateAll(ctx context.Context) error {
	m := d.db.WithContext(ctx).Migrator()
	for _, s := range schema {
		if !m.HasTable(s.model) {
			if err := m.CreateTable(s.model); err != nil {
				return fmt.Errorf("创建表 %s 失败: %w", s.table, err)
			}
			log.Printf("已创建表 %s", s.table)
			continue
		}
		for _, name := range s.indexes {
			if m.HasIndex(s.model, name) {
				continue
			}
			if err := m.CreateIndex(s.model, name); err != nil {
				return fmt.Errorf("创建索引 %s.%s 失败: %w", s.table, name, err)
			}
			log.Printf("已创建索引 %s.%s", s.table, name)
		}
	}
	return nil
}

// DropAll 按依赖逆序删除全部表，数据不可恢复
func (d *DB) DropAll(ctx context.Context) error {
	m := d.db.WithContext(ctx).Migrator()
	for i := len(schema) - 1; i >= 0; i-- {
		s := schema[i]
		if err := m.DropTable(s.model); err != nil {
			return fmt.Errorf("删除表 %s 失败: %w", s.table, err)
		}
	}
	return nil
}

// CountTables 统计 public schema 中的表数量
func (d *DB) CountTables(ctx context.Context) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Raw(
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE'",
	).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计表数量失败: %w", err)
	}
	return count, nil
}

// MissingTables 返回尚未创建的表
func (d *DB) MissingTables(ctx context.Context) []string {
	m := d.db.WithContext(ctx).Migrator()
	var missing []string
	for _, s := range schema {
		if !m.HasTable(s.table) {
			missing = append(missing, s.table)
		}
	}
	return missing
}
