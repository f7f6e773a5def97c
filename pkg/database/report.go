package database

import (
	"context"
	"fmt"
	"time"

	"TrendAgent/pkg/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportDB struct {
	db *gorm.DB
}

func (d *DB) Report() *ReportDB {
	return &ReportDB{db: d.db}
}

// Create 插入日报，同一天已有报告时返回 ErrDuplicate
func (r *ReportDB) Create(ctx context.Context, report *model.DailyReport) error {
	report.GeneratedAt = time.Now().UTC()
	return wrap("保存日报失败", r.db.WithContext(ctx).Create(report).Error)
}

// Upsert 每天只保留一份报告，重新生成时覆盖
func (r *ReportDB) Upsert(ctx context.Context, report *model.DailyReport) error {
	report.GeneratedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "report_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"generated_at", "report_content_ko", "report_content_en", "topics_covered", "insights_summary",
		}),
	}).Create(report).Error
	if err != nil {
		return wrap("保存日报失败", err)
	}

	stored, err := r.GetByDate(ctx, report.ReportDate)
	if err != nil {
		return err
	}
	*report = *stored
	return nil
}

func (r *ReportDB) GetByDate(ctx context.Context, date time.Time) (*model.DailyReport, error) {
	var report model.DailyReport
	err := r.db.WithContext(ctx).First(&report, "report_date = ?", model.Day(date)).Error
	if err != nil {
		return nil, wrap(fmt.Sprintf("获取 %s 日报失败", model.Day(date).Format("2006-01-02")), err)
	}
	return &report, nil
}
