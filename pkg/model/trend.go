// pkg/model/trend.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// TrendStage 趋势生命周期阶段
type TrendStage string

const (
	StageEmerging  TrendStage = "emerging"
	StageGrowing   TrendStage = "growing"
	StagePeak      TrendStage = "peak"
	StageDeclining TrendStage = "declining"
)

// Valid 判断阶段是否合法，空值表示尚未评估
func (s TrendStage) Valid() bool {
	switch s {
	case "", StageEmerging, StageGrowing, StagePeak, StageDeclining:
		return true
	}
	return false
}

// RelationshipType 趋势之间的关系类型
type RelationshipType string

const (
	RelationParentChild   RelationshipType = "parent_child"
	RelationEvolution     RelationshipType = "evolution"
	RelationAestheticLink RelationshipType = "aesthetic_link"
	RelationOther         RelationshipType = "other"
)

// Valid 判断关系类型是否合法
func (t RelationshipType) Valid() bool {
	switch t {
	case RelationParentChild, RelationEvolution, RelationAestheticLink, RelationOther:
		return true
	}
	return false
}

// Trend 持续跟踪的话题
// ParentTrendID 构成自引用层级，无环约束由写入方保证（见 Hierarchy）
type Trend struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"type:varchar(200);not null" json:"name"`
	NameKo   string    `gorm:"type:varchar(200)" json:"name_ko,omitempty"` // 韩文名称
	Category string    `gorm:"type:varchar(50)" json:"category"`           // aesthetic, formulation, general

	// 生命周期
	FirstDetectedAt time.Time  `json:"first_detected_at"`
	CurrentStage    TrendStage `gorm:"type:varchar(50)" json:"current_stage"`

	// 聚类
	ParentTrendID   *uuid.UUID     `gorm:"type:uuid" json:"parent_trend_id,omitempty"`
	ClusterKeywords pq.StringArray `gorm:"type:text[]" json:"cluster_keywords"`

	ParentTrend *Trend `gorm:"foreignKey:ParentTrendID" json:"-"`
}

func (Trend) TableName() string {
	return "trends"
}

func (t *Trend) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.FirstDetectedAt.IsZero() {
		t.FirstDetectedAt = time.Now().UTC()
	}
	return nil
}

// TrendRelationship 趋势之间的有向关系（父子、演化、美学关联等）
type TrendRelationship struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	SourceTrendID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_trend_rel,priority:1" json:"source_trend_id"`
	TargetTrendID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_trend_rel,priority:2" json:"target_trend_id"`
	RelationshipType RelationshipType `gorm:"type:varchar(50);not null;uniqueIndex:uq_trend_rel,priority:3" json:"relationship_type"`
	Confidence       float64          `gorm:"default:1" json:"confidence"`
	DetectedAt       time.Time        `json:"detected_at"`

	SourceTrend *Trend `gorm:"foreignKey:SourceTrendID" json:"-"`
	TargetTrend *Trend `gorm:"foreignKey:TargetTrendID" json:"-"`
}

func (TrendRelationship) TableName() string {
	return "trend_relationships"
}

func (r *TrendRelationship) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.DetectedAt.IsZero() {
		r.DetectedAt = time.Now().UTC()
	}
	return nil
}
