package database

import (
	"context"
	"fmt"
	"time"

	"TrendAgent/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentDB struct {
	db *gorm.DB
}

func (d *DB) Content() *ContentDB {
	return &ContentDB{db: d.db}
}

// Create 插入新内容，URL重复时返回 ErrDuplicate
func (c *ContentDB) Create(ctx context.Context, content *model.Content) error {
	return wrap("保存内容失败", c.db.WithContext(ctx).Create(content).Error)
}

// Upsert 按 source_url 插入或更新
// 重复采集只刷新互动数据、原始元数据和采集时间，content 会被回填为库中的行
func (c *ContentDB) Upsert(ctx context.Context, content *model.Content) error {
	content.CollectedAt = time.Now().UTC()
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"likes", "comments", "shares", "views", "raw_metadata", "collected_at",
		}),
	}).Create(content).Error
	if err != nil {
		return wrap("更新内容失败", err)
	}

	stored, err := c.GetByURL(ctx, content.SourceURL)
	if err != nil {
		return err
	}
	*content = *stored
	return nil
}

func (c *ContentDB) GetByURL(ctx context.Context, url string) (*model.Content, error) {
	var content model.Content
	err := c.db.WithContext(ctx).First(&content, "source_url = ?", url).Error
	if err != nil {
		return nil, wrap(fmt.Sprintf("获取内容 %s 失败", url), err)
	}
	return &content, nil
}

func (c *ContentDB) GetByID(ctx context.Context, id uuid.UUID) (*model.Content, error) {
	var content model.Content
	err := c.db.WithContext(ctx).First(&content, "id = ?", id).Error
	if err != nil {
		return nil, wrap("获取内容失败", err)
	}
	return &content, nil
}

// RecentByPlatform 按发布时间倒序查询某平台在 since 之后发布的内容
func (c *ContentDB) RecentByPlatform(ctx context.Context, platform model.Platform, since time.Time, limit int) ([]*model.Content, error) {
	var contents []*model.Content
	err := c.db.WithContext(ctx).
		Where("platform = ? AND published_at >= ?", platform, since).
		Order("published_at DESC").
		Limit(limit).
		Find(&contents).Error
	if err != nil {
		return nil, wrap("查询平台内容失败", err)
	}
	return contents, nil
}

// AddEntities 为内容添加实体，已存在的 (内容, 类型, 实体) 组合会被跳过
// 返回实际插入的行数
func (c *ContentDB) AddEntities(ctx context.Context, contentID uuid.UUID, entities []*model.ContentEntity) (int64, error) {
	if len(entities) == 0 {
		return 0, nil
	}
	for _, e := range entities {
		if !e.EntityType.Valid() {
			return 0, fmt.Errorf("实体类型 %q: %w", e.EntityType, ErrInvalid)
		}
		if e.EntityID == "" {
			return 0, fmt.Errorf("实体ID为空: %w", ErrInvalid)
		}
		e.ContentID = contentID
	}

	result := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}, {Name: "entity_type"}, {Name: "entity_id"}},
		DoNothing: true,
	}).Create(&entities)
	if result.Error != nil {
		return 0, wrap("保存内容实体失败", result.Error)
	}
	return result.RowsAffected, nil
}

func (c *ContentDB) Entities(ctx context.Context, contentID uuid.UUID) ([]*model.ContentEntity, error) {
	var entities []*model.ContentEntity
	err := c.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("entity_type, entity_id").
		Find(&entities).Error
	if err != nil {
		return nil, wrap("查询内容实体失败", err)
	}
	return entities, nil
}

// Delete 删除内容，其实体随之级联删除
func (c *ContentDB) Delete(ctx context.Context, id uuid.UUID) error {
	result := c.db.WithContext(ctx).Delete(&model.Content{}, "id = ?", id)
	if result.Error != nil {
		return wrap("删除内容失败", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("删除内容失败: %w", ErrNotFound)
	}
	return nil
}
