package repo

import (
	"context"

	"gorm.io/gorm"
)

type DashboardStore struct{ db *gorm.DB }

func NewDashboardStore(db *gorm.DB) *DashboardStore { return &DashboardStore{db: db} }

// HomeCounts: сводка для главной страницы.
type HomeCounts struct {
	TotalFarmers int64   `gorm:"column:total_farmers" json:"total_farmers"`
	TotalFarms   int64   `gorm:"column:total_no_farms" json:"total_no_farms"`
	TotalLand    float64 `gorm:"column:total_land" json:"total_land"`
	TotalDevices int64   `gorm:"column:total_devices" json:"total_devices"`
}

func (s *DashboardStore) HomeCounts(ctx context.Context) (*HomeCounts, error) {
	var out HomeCounts
	err := s.db.WithContext(ctx).Raw(`SELECT
  (SELECT COUNT(*) FROM farmer) AS total_farmers,
  (SELECT COUNT(*) FROM farm) AS total_no_farms,
  (SELECT COALESCE(SUM(farm_size), 0) FROM farm) AS total_land,
  (SELECT COUNT(*) FROM section_devices) + (SELECT COUNT(*) FROM farm_devices) AS total_devices`).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
