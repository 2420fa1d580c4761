package repo

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

// AdminStore: операции администратора. Всё ограничено связкой admin → farmer → farm.
type AdminStore struct{ db *gorm.DB }

func NewAdminStore(db *gorm.DB) *AdminStore { return &AdminStore{db: db} }

type AdminInfo struct {
	AdminID       int64  `gorm:"column:admin_id" json:"admin_id"`
	AdminFname    string `gorm:"column:admin_fname" json:"admin_fname"`
	AdminLocation string `gorm:"column:admin_location" json:"admin_location"`
}

type FarmerRow struct {
	FarmerID    int64     `gorm:"column:farmer_id" json:"farmer_id"`
	FarmerFname string    `gorm:"column:farmer_fname" json:"farmer_fname"`
	FarmerLname string    `gorm:"column:farmer_lname" json:"farmer_lname"`
	FarmerPhone string    `gorm:"column:farmer_phone" json:"farmer_phone"`
	FarmerEmail string    `gorm:"column:farmer_email" json:"farmer_email"`
	JoinDate    time.Time `gorm:"column:join_date" json:"join_date"`
	TotalFarms  int64     `gorm:"column:total_farms" json:"total_farms"`
}

type AdminDashboard struct {
	Admin   AdminInfo   `json:"admin_data"`
	Farmers []FarmerRow `json:"farmer_data"`
}

func (s *AdminStore) Dashboard(ctx context.Context, adminID int64) (*AdminDashboard, error) {
	var admins []AdminInfo
	if err := s.db.WithContext(ctx).Raw(
		"SELECT admin_id, admin_fname, admin_location FROM admin WHERE admin_id = ?", adminID).
		Scan(&admins).Error; err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return nil, ErrNotFound
	}
	d := &AdminDashboard{Admin: admins[0], Farmers: []FarmerRow{}}
	if err := s.db.WithContext(ctx).Raw(
		"SELECT f.farmer_id, f.farmer_fname, f.farmer_lname, f.farmer_phone, f.farmer_email, f.join_date, "+
			"COUNT(fr.farm_id) AS total_farms "+
			"FROM farmer f LEFT JOIN farm fr ON f.farmer_id = fr.farmer_id "+
			"WHERE f.admin_id = ? GROUP BY f.farmer_id ORDER BY f.farmer_id", adminID).
		Scan(&d.Farmers).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// CreateFarmer заводит фермера у существующего админа. Пароль уже захэширован.
func (s *AdminStore) CreateFarmer(ctx context.Context, f models.Farmer) (*models.Farmer, error) {
	var out []models.Farmer
	err := s.db.WithContext(ctx).Raw(
		"INSERT INTO farmer (farmer_fname, farmer_lname, farmer_password, farmer_phone, farmer_email, admin_id) "+
			"SELECT ?, ?, ?, ?, ?, admin_id FROM admin WHERE admin_id = ? "+
			"RETURNING farmer_id, farmer_fname, farmer_lname, farmer_phone, farmer_email, join_date, admin_id",
		f.FarmerFname, f.FarmerLname, f.FarmerPassword, f.FarmerPhone, f.FarmerEmail, f.AdminID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// UpdateFarmer меняет одно поле фермера этого админа.
func (s *AdminStore) UpdateFarmer(ctx context.Context, adminID, farmerID int64, u FarmerUpdate) error {
	res := s.db.WithContext(ctx).Exec(
		"UPDATE farmer SET "+u.farmerColumn()+" = ? WHERE farmer_id = ? AND admin_id = ?",
		u.value(), farmerID, adminID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Farms: фермы фермера этого админа (с ключом, админ его выдаёт устройствам).
func (s *AdminStore) Farms(ctx context.Context, adminID, farmerID int64) ([]models.Farm, error) {
	var out []models.Farm
	err := s.db.WithContext(ctx).Raw(
		"SELECT fr.* FROM farm fr JOIN farmer f ON fr.farmer_id = f.farmer_id "+
			"WHERE fr.farmer_id = ? AND f.admin_id = ? ORDER BY fr.farm_id", farmerID, adminID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// UpdateFarm меняет одно поле фермы; ферма должна принадлежать фермеру этого админа.
func (s *AdminStore) UpdateFarm(ctx context.Context, adminID, farmerID, farmID int64, u FarmUpdate) error {
	res := s.db.WithContext(ctx).Exec(
		"UPDATE farm SET "+u.farmColumn()+" = ? WHERE farm_id = ? AND farmer_id = ? "+
			"AND farmer_id IN (SELECT farmer_id FROM farmer WHERE admin_id = ?)",
		u.value(), farmID, farmerID, adminID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type SectionRow struct {
	FarmerID            int64     `gorm:"column:farmer_id" json:"farmer_id"`
	FarmID              int64     `gorm:"column:farm_id" json:"farm_id"`
	SectionID           int64     `gorm:"column:section_id" json:"section_id"`
	SectionName         string    `gorm:"column:section_name" json:"section_name"`
	CreationDate        time.Time `gorm:"column:creation_date" json:"creation_date"`
	TotalSectionDevices int64     `gorm:"column:total_section_devices" json:"total_section_devices"`
}

func (s *AdminStore) Sections(ctx context.Context, adminID, farmerID, farmID int64) ([]SectionRow, error) {
	var out []SectionRow
	err := s.db.WithContext(ctx).Raw(
		"SELECT farmer_id, farm_id, section_id, section_name, creation_date, total_section_devices "+
			"FROM farmer_farm_with_sections WHERE admin_id = ? AND farmer_id = ? AND farm_id = ? ORDER BY section_id",
		adminID, farmerID, farmID).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

type SectionDeviceRow struct {
	FarmerID         int64          `gorm:"column:farmer_id" json:"farmer_id"`
	FarmID           int64          `gorm:"column:farm_id" json:"farm_id"`
	SectionID        int64          `gorm:"column:section_id" json:"section_id"`
	SectionDeviceID  int64          `gorm:"column:section_device_id" json:"section_device_id"`
	DeviceName       string         `gorm:"column:device_name" json:"device_name"`
	DeviceLocation   datatypes.JSON `gorm:"column:device_location" json:"device_location"`
	InstallationDate time.Time      `gorm:"column:installation_date" json:"installation_date"`
}

func (s *AdminStore) SectionDevices(ctx context.Context, adminID, farmerID, farmID, sectionID int64) ([]SectionDeviceRow, error) {
	var out []SectionDeviceRow
	err := s.db.WithContext(ctx).Raw(
		"SELECT farmer_id, farm_id, section_id, section_device_id, device_name, device_location, installation_date "+
			"FROM farmer_farm_with_all_section_devices "+
			"WHERE admin_id = ? AND farmer_id = ? AND farm_id = ? AND section_id = ? ORDER BY section_device_id",
		adminID, farmerID, farmID, sectionID).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
