// pkg/model/report.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DailyReport 每日报告，每个日期最多一份
type DailyReport struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportDate  time.Time `gorm:"type:date;not null;uniqueIndex:uq_daily_report_date" json:"report_date"`
	GeneratedAt time.Time `json:"generated_at"`

	ReportContentKo string `gorm:"type:text" json:"report_content_ko"`           // 韩文报告
	ReportContentEn string `gorm:"type:text" json:"report_content_en,omitempty"` // 英文报告（可选）

	TopicsCovered   pq.StringArray    `gorm:"type:uuid[]" json:"topics_covered"`
	InsightsSummary datatypes.JSONMap `gorm:"type:jsonb" json:"insights_summary,omitempty"`
}

func (DailyReport) TableName() string {
	return "daily_reports"
}

func (r *DailyReport) BeforeSave(tx *gorm.DB) error {
	r.ReportDate = Day(r.ReportDate)
	return nil
}

func (r *DailyReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	return nil
}

// SetTopics 设置报告覆盖的话题
func (r *DailyReport) SetTopics(ids []uuid.UUID) {
	r.TopicsCovered = make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		r.TopicsCovered = append(r.TopicsCovered, id.String())
	}
}

// Topics 返回报告覆盖的话题ID
func (r *DailyReport) Topics() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.TopicsCovered))
	for _, s := range r.TopicsCovered {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("解析话题ID %q 失败: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
