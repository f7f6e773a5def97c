// pkg/model/content.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Platform 内容来源平台
type Platform string

const (
	PlatformReddit  Platform = "reddit"
	PlatformTikTok  Platform = "tiktok"
	PlatformYouTube Platform = "youtube"
)

// EntityType 内容中识别出的实体类型
type EntityType string

const (
	EntityTypeBrand      EntityType = "brand"
	EntityTypeIngredient EntityType = "ingredient"
	EntityTypeAesthetic  EntityType = "aesthetic"
	EntityTypeOther      EntityType = "other"
)

// Valid 判断实体类型是否合法
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeBrand, EntityTypeIngredient, EntityTypeAesthetic, EntityTypeOther:
		return true
	}
	return false
}

// Content 从各平台采集的原始内容
type Content struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Platform    Platform   `gorm:"type:varchar(50);not null;index:ix_content_platform_published,priority:1" json:"platform"`
	SourceURL   string     `gorm:"column:source_url;type:text;not null;uniqueIndex:uq_content_source_url" json:"source_url"`
	ContentText string     `gorm:"type:text" json:"content_text"`
	AuthorID    string     `gorm:"type:varchar(200)" json:"author_id"`
	PublishedAt *time.Time `gorm:"index:ix_content_platform_published,priority:2" json:"published_at,omitempty"`
	CollectedAt time.Time  `gorm:"index:ix_content_collected_at" json:"collected_at"`

	// 过滤
	AuthenticityScore *float64 `json:"authenticity_score,omitempty"` // 0.0-1.0
	IsOrganic         *bool    `gorm:"default:true" json:"is_organic"`

	// 语言
	Language       string `gorm:"type:varchar(10)" json:"language"`
	InferredRegion string `gorm:"type:varchar(10)" json:"inferred_region"`

	// 互动数据，重复采集时刷新
	Likes    int64 `gorm:"default:0" json:"likes"`
	Comments int64 `gorm:"default:0" json:"comments"`
	Shares   int64 `gorm:"default:0" json:"shares"`
	Views    int64 `gorm:"default:0" json:"views"`

	RawMetadata datatypes.JSONMap `gorm:"type:jsonb" json:"raw_metadata,omitempty"`
}

func (Content) TableName() string {
	return "content"
}

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CollectedAt.IsZero() {
		c.CollectedAt = time.Now().UTC()
	}
	return nil
}

// Organic 返回是否为自然内容，未设置时默认为true
func (c *Content) Organic() bool {
	return c.IsOrganic == nil || *c.IsOrganic
}

// ContentEntity 从内容中抽取的实体（品牌、成分、美学风格等）
// 同一内容中同一归一化实体只记录一次
type ContentEntity struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_content_entity,priority:1" json:"content_id"`
	EntityType  EntityType `gorm:"type:varchar(50);not null;uniqueIndex:uq_content_entity,priority:2;index:ix_content_entity_type_id,priority:1" json:"entity_type"`
	EntityID    string     `gorm:"type:varchar(200);not null;uniqueIndex:uq_content_entity,priority:3;index:ix_content_entity_type_id,priority:2" json:"entity_id"`
	EntityValue string     `gorm:"type:varchar(200)" json:"entity_value"`
	Confidence  float64    `gorm:"default:1" json:"confidence"`

	// 内容删除时级联删除其实体
	Content *Content `gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ContentEntity) TableName() string {
	return "content_entities"
}

func (e *ContentEntity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
