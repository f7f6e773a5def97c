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

type BrandShareDB struct {
	db *gorm.DB
}

func (d *DB) BrandShare() *BrandShareDB {
	return &BrandShareDB{db: d.db}
}

func validateShare(share *model.BrandTopicShare) error {
	if share.Brand == "" {
		return fmt.Errorf("品牌为空: %w", ErrInvalid)
	}
	if v := share.ShareOfVoice; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("声量占比 %.4f 超出[0,1]: %w", *v, ErrInvalid)
	}
	return nil
}

func (b *BrandShareDB) Create(ctx context.Context, share *model.BrandTopicShare) error {
	if err := validateShare(share); err != nil {
		return err
	}
	return wrap("保存品牌声量失败", b.db.WithContext(ctx).Create(share).Error)
}

// Upsert 覆盖同一 (趋势, 品牌, 日期, 地区) 的声量数据
func (b *BrandShareDB) Upsert(ctx context.Context, share *model.BrandTopicShare) error {
	if err := validateShare(share); err != nil {
		return err
	}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trend_id"}, {Name: "brand"}, {Name: "date"}, {Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_amorepacific", "mention_count", "share_of_voice", "avg_sentiment", "top_products",
		}),
	}).Create(share).Error
	if err != nil {
		return wrap("更新品牌声量失败", err)
	}

	var stored model.BrandTopicShare
	err = b.db.WithContext(ctx).
		Where("trend_id = ? AND brand = ? AND date = ? AND region = ?", share.TrendID, share.Brand, share.Date, share.Region).
		First(&stored).Error
	if err != nil {
		return wrap("回读品牌声量失败", err)
	}
	*share = stored
	return nil
}

// ByTrend 返回某话题某日的品牌声量，按占比降序
func (b *BrandShareDB) ByTrend(ctx context.Context, trendID uuid.UUID, date time.Time, region string) ([]*model.BrandTopicShare, error) {
	if region == "" {
		region = model.RegionGlobal
	}
	var shares []*model.BrandTopicShare
	err := b.db.WithContext(ctx).
		Where("trend_id = ? AND date = ? AND region = ?", trendID, model.Day(date), region).
		Order("share_of_voice DESC NULLS LAST").
		Find(&shares).Error
	if err != nil {
		return nil, wrap("查询品牌声量失败", err)
	}
	return shares, nil
}
