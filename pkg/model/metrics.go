// pkg/model/metrics.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegionGlobal 未区分地区时的默认地区代码
const RegionGlobal = "global"

// PlatformBreakdown 各平台提及数 {"reddit": 100, "tiktok": 200}
type PlatformBreakdown map[string]int64

// TrendMetrics 趋势每日每地区的指标
// (trend_id, date, region) 唯一，重新计算时应使用 upsert
type TrendMetrics struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TrendID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_trend_metrics,priority:1" json:"trend_id"`
	Date    time.Time `gorm:"type:date;not null;uniqueIndex:uq_trend_metrics,priority:2;index:ix_trend_metrics_date" json:"date"`
	Region  string    `gorm:"type:varchar(10);default:'global';uniqueIndex:uq_trend_metrics,priority:3" json:"region"`

	// 声量
	MentionCount    int64 `gorm:"default:0" json:"mention_count"`
	UniqueAuthors   int64 `gorm:"default:0" json:"unique_authors"`
	TotalEngagement int64 `gorm:"default:0" json:"total_engagement"`

	// 增速：周环比百分比
	WowChange *float64 `json:"wow_change,omitempty"`

	// 情感
	AvgSentiment      *float64 `json:"avg_sentiment,omitempty"`
	AvgPurchaseIntent *float64 `json:"avg_purchase_intent,omitempty"`

	PlatformBreakdown datatypes.JSONType[PlatformBreakdown] `gorm:"type:jsonb" json:"platform_breakdown"`

	Trend *Trend `gorm:"foreignKey:TrendID" json:"-"`
}

func (TrendMetrics) TableName() string {
	return "trend_metrics"
}

func (m *TrendMetrics) BeforeSave(tx *gorm.DB) error {
	m.Date = Day(m.Date)
	if m.Region == "" {
		m.Region = RegionGlobal
	}
	return nil
}

func (m *TrendMetrics) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RankedProduct 品牌在话题内的热门产品
type RankedProduct struct {
	Rank     int    `json:"rank"`
	Name     string `json:"name"`
	Mentions int64  `json:"mentions"`
}

// BrandTopicShare 品牌在某话题内的声量占比
type BrandTopicShare struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TrendID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_brand_topic,priority:1" json:"trend_id"`
	Brand          string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_brand_topic,priority:2;index:ix_brand_topic_brand" json:"brand"`
	IsAmorepacific bool      `gorm:"default:false" json:"is_amorepacific"` // 是否为战略品牌
	Date           time.Time `gorm:"type:date;not null;uniqueIndex:uq_brand_topic,priority:3" json:"date"`
	Region         string    `gorm:"type:varchar(10);default:'global';uniqueIndex:uq_brand_topic,priority:4" json:"region"`

	MentionCount int64                               `gorm:"default:0" json:"mention_count"`
	ShareOfVoice *float64                            `json:"share_of_voice,omitempty"` // [0,1]
	AvgSentiment *float64                            `json:"avg_sentiment,omitempty"`
	TopProducts  datatypes.JSONType[[]RankedProduct] `gorm:"type:jsonb" json:"top_products"`

	Trend *Trend `gorm:"foreignKey:TrendID" json:"-"`
}

func (BrandTopicShare) TableName() string {
	return "brand_topic_share"
}

func (b *BrandTopicShare) BeforeSave(tx *gorm.DB) error {
	b.Date = Day(b.Date)
	if b.Region == "" {
		b.Region = RegionGlobal
	}
	return nil
}

func (b *BrandTopicShare) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Day 将时间截断为UTC日期
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
