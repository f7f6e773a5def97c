package database

import (
	"context"
	"fmt"

	"TrendAgent/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrendDB struct {
	db *gorm.DB
}

func (d *DB) Trend() *TrendDB {
	return &TrendDB{db: d.db}
}

// Create 创建趋势，父趋势必须已存在
func (t *TrendDB) Create(ctx context.Context, trend *model.Trend) error {
	if !trend.CurrentStage.Valid() {
		return fmt.Errorf("趋势阶段 %q: %w", trend.CurrentStage, ErrInvalid)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if trend.ParentTrendID != nil {
			if trend.ID != uuid.Nil && *trend.ParentTrendID == trend.ID {
				return fmt.Errorf("趋势不能以自身为父节点: %w", ErrCycle)
			}
			var parent model.Trend
			if err := tx.Select("id").First(&parent, "id = ?", *trend.ParentTrendID).Error; err != nil {
				return wrap("获取父趋势失败", err)
			}
		}
		return wrap("保存趋势失败", tx.Create(trend).Error)
	})
}

// SetParent 修改父趋势，parentID 为 nil 表示设为根节点
// 形成环时返回 ErrCycle
func (t *TrendDB) SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住所有趋势行，避免并发修改绕过环检测
		h, err := loadHierarchy(tx.Clauses(clause.Locking{Strength: "UPDATE"}))
		if err != nil {
			return err
		}
		if !h.Contains(id) {
			return fmt.Errorf("趋势 %s: %w", id, ErrNotFound)
		}
		if parentID != nil && !h.Contains(*parentID) {
			return fmt.Errorf("父趋势 %s: %w", *parentID, ErrNotFound)
		}
		if err := h.SetParent(id, parentID); err != nil {
			return err
		}
		err = tx.Model(&model.Trend{}).Where("id = ?", id).Update("parent_trend_id", parentID).Error
		return wrap("更新父趋势失败", err)
	})
}

// UpdateStage 更新生命周期阶段
func (t *TrendDB) UpdateStage(ctx context.Context, id uuid.UUID, stage model.TrendStage) error {
	if stage == "" || !stage.Valid() {
		return fmt.Errorf("趋势阶段 %q: %w", stage, ErrInvalid)
	}
	result := t.db.WithContext(ctx).Model(&model.Trend{}).Where("id = ?", id).Update("current_stage", stage)
	if result.Error != nil {
		return wrap("更新趋势阶段失败", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("趋势 %s: %w", id, ErrNotFound)
	}
	return nil
}

func (t *TrendDB) GetByID(ctx context.Context, id uuid.UUID) (*model.Trend, error) {
	var trend model.Trend
	if err := t.db.WithContext(ctx).First(&trend, "id = ?", id).Error; err != nil {
		return nil, wrap("获取趋势失败", err)
	}
	return &trend, nil
}

// Children 返回直接子趋势
func (t *TrendDB) Children(ctx context.Context, id uuid.UUID) ([]*model.Trend, error) {
	var trends []*model.Trend
	err := t.db.WithContext(ctx).Where("parent_trend_id = ?", id).Order("name").Find(&trends).Error
	if err != nil {
		return nil, wrap("查询子趋势失败", err)
	}
	return trends, nil
}

// Hierarchy 加载完整的趋势层级
func (t *TrendDB) Hierarchy(ctx context.Context) (*model.Hierarchy, error) {
	return loadHierarchy(t.db.WithContext(ctx))
}

func loadHierarchy(db *gorm.DB) (*model.Hierarchy, error) {
	var trends []*model.Trend
	if err := db.Select("id", "parent_trend_id").Find(&trends).Error; err != nil {
		return nil, wrap("加载趋势层级失败", err)
	}
	return model.BuildHierarchy(trends)
}

// Relate 记录两个趋势之间的关系，不允许自环
func (t *TrendDB) Relate(ctx context.Context, rel *model.TrendRelationship) error {
	if rel.SourceTrendID == rel.TargetTrendID {
		return fmt.Errorf("趋势关系的两端相同: %w", ErrInvalid)
	}
	if !rel.RelationshipType.Valid() {
		return fmt.Errorf("关系类型 %q: %w", rel.RelationshipType, ErrInvalid)
	}
	return wrap("保存趋势关系失败", t.db.WithContext(ctx).Create(rel).Error)
}

// Relationships 返回与趋势相关的全部关系（作为来源或目标）
func (t *TrendDB) Relationships(ctx context.Context, id uuid.UUID) ([]*model.TrendRelationship, error) {
	var rels []*model.TrendRelationship
	err := t.db.WithContext(ctx).
		Where("source_trend_id = ? OR target_trend_id = ?", id, id).
		Order("detected_at DESC").
		Find(&rels).Error
	if err != nil {
		return nil, wrap("查询趋势关系失败", err)
	}
	return rels, nil
}
