package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

// FarmStore: чтение/правка ферм со стороны фермера.
type FarmStore struct{ db *gorm.DB }

func NewFarmStore(db *gorm.DB) *FarmStore { return &FarmStore{db: db} }

type FarmerSummary struct {
	FarmerID    int64  `gorm:"column:farmer_id" json:"farmer_id"`
	FarmerFname string `gorm:"column:farmer_fname" json:"farmer_fname"`
	TotalFarms  int64  `gorm:"column:farmer_total_farms" json:"farmer_total_farms"`
}

type FarmSummary struct {
	FarmID       int64          `gorm:"column:farm_id" json:"farm_id"`
	FarmName     string         `gorm:"column:farm_name" json:"farm_name"`
	FarmSize     float64        `gorm:"column:farm_size" json:"farm_size"`
	FarmLocation datatypes.JSON `gorm:"column:farm_location" json:"farm_location"`
}

type FarmerOverview struct {
	Farmer FarmerSummary `json:"farmer_details"`
	Farms  []FarmSummary `json:"farmer_farms"`
}

// FarmerOverview: карточка фермера и список его ферм. Фермы нет → ErrNotFound.
func (s *FarmStore) FarmerOverview(ctx context.Context, farmerID int64) (*FarmerOverview, error) {
	var farmers []FarmerSummary
	err := s.db.WithContext(ctx).Raw(
		"SELECT farmer_id, farmer_fname, "+
			"(SELECT COUNT(*) FROM farm WHERE farm.farmer_id = farmer.farmer_id) AS farmer_total_farms "+
			"FROM farmer WHERE farmer_id = ?", farmerID).
		Scan(&farmers).Error
	if err != nil {
		return nil, err
	}
	if len(farmers) == 0 {
		return nil, ErrNotFound
	}

	var farms []FarmSummary
	err = s.db.WithContext(ctx).Raw(
		"SELECT farm_id, farm_name, farm_size, farm_location_cordinates->0 AS farm_location "+
			"FROM farm WHERE farmer_id = ? ORDER BY farm_id", farmerID).
		Scan(&farms).Error
	if err != nil {
		return nil, err
	}
	if len(farms) == 0 {
		return nil, ErrNotFound
	}
	return &FarmerOverview{Farmer: farmers[0], Farms: farms}, nil
}

type FarmInfo struct {
	FarmID           int64          `gorm:"column:farm_id" json:"farm_id"`
	FarmName         string         `gorm:"column:farm_name" json:"farm_name"`
	AutoOnThreshold  int            `gorm:"column:auto_on_threshold" json:"auto_on_threshold"`
	AutoOffThreshold int            `gorm:"column:auto_off_threshold" json:"auto_off_threshold"`
	Coordinates      datatypes.JSON `gorm:"column:farm_location_cordinates" json:"-"`
}

type SectionDeviceInfo struct {
	SectionDeviceID int64          `gorm:"column:section_device_id" json:"section_device_id"`
	SectionID       int64          `gorm:"column:section_id" json:"section_id"`
	SectionName     string         `gorm:"column:section_name" json:"section_name"`
	DeviceName      string         `gorm:"column:device_name" json:"device_name"`
	DeviceLocation  datatypes.JSON `gorm:"column:device_location" json:"device_location"`
}

type FarmDeviceInfo struct {
	FarmDeviceID   int64          `gorm:"column:farm_device_id" json:"farm_device_id"`
	DeviceName     string         `gorm:"column:device_name" json:"device_name"`
	DeviceLocation datatypes.JSON `gorm:"column:device_location" json:"device_location"`
}

type LatestMoisture struct {
	SectionDeviceID int64     `gorm:"column:section_device_id" json:"section_device_id"`
	Timestamp       time.Time `gorm:"column:timestamp" json:"timestamp"`
	MoistureValue   int       `gorm:"column:moisture_value" json:"moisture_value"`
	SectionID       int64     `gorm:"column:section_id" json:"section_id"`
}

type LatestField struct {
	FarmDeviceID int64     `gorm:"column:farm_device_id" json:"farm_device_id"`
	Nitrogen     float64   `gorm:"column:nitrogen" json:"nitrogen"`
	Phosphorus   float64   `gorm:"column:phosphorus" json:"phosphorus"`
	Potassium    float64   `gorm:"column:potassium" json:"potassium"`
	Temperature  float64   `gorm:"column:temperature" json:"temperature"`
	Humidity     float64   `gorm:"column:humidity" json:"humidity"`
	Timestamp    time.Time `gorm:"column:timestamp" json:"timestamp"`
	AvgMoisture  *float64  `gorm:"column:avg_moisture" json:"avg_moisture"`
}

type FarmLocations struct {
	FarmCoordinates datatypes.JSON      `json:"farm_coordinates"`
	FarmDevices     []FarmDeviceInfo    `json:"farm_device"`
	SectionDevices  []SectionDeviceInfo `json:"section_device"`
}

type DeviceValues struct {
	Moisture []LatestMoisture `json:"moisture_device_value"`
	Valves   []ValveSnapshot  `json:"valve_devices_data"`
	Field    []LatestField    `json:"farm_device_data"`
}

type FarmDetail struct {
	Farm      FarmInfo      `json:"farm_details"`
	Locations FarmLocations `json:"location_coordinates"`
	Values    DeviceValues  `json:"device_values"`
}

// Detail собирает страницу фермы: пороги, устройства, последние значения.
func (s *FarmStore) Detail(ctx context.Context, farmID int64) (*FarmDetail, error) {
	tx := s.db.WithContext(ctx)

	var farms []FarmInfo
	if err := tx.Raw("SELECT farm_id, farm_name, auto_on_threshold, auto_off_threshold, farm_location_cordinates "+
		"FROM farm WHERE farm_id = ?", farmID).Scan(&farms).Error; err != nil {
		return nil, err
	}
	if len(farms) == 0 {
		return nil, ErrNotFound
	}
	d := &FarmDetail{Farm: farms[0]}
	d.Locations.FarmCoordinates = farms[0].Coordinates

	if err := tx.Raw("SELECT sd.section_device_id, sd.section_id, s.section_name, sd.device_name, sd.device_location "+
		"FROM section_devices sd JOIN section s ON sd.section_id = s.section_id "+
		"WHERE s.farm_id = ? ORDER BY sd.section_device_id", farmID).Scan(&d.Locations.SectionDevices).Error; err != nil {
		return nil, err
	}
	if err := tx.Raw("SELECT farm_device_id, device_name, device_location FROM farm_devices "+
		"WHERE farm_id = ? ORDER BY farm_device_id", farmID).Scan(&d.Locations.FarmDevices).Error; err != nil {
		return nil, err
	}
	if err := tx.Raw("SELECT lm.section_device_id, lm.timestamp, lm.moisture_value, sd.section_id "+
		"FROM lst_moisture_data lm "+
		"JOIN section_devices sd ON sd.section_device_id = lm.section_device_id "+
		"JOIN section s ON s.section_id = sd.section_id "+
		"WHERE s.farm_id = ? ORDER BY lm.section_device_id", farmID).Scan(&d.Values.Moisture).Error; err != nil {
		return nil, err
	}

	valves, err := NewValveStore(s.db).Aggregates(ctx, SystemScope(farmID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	d.Values.Valves = valves

	if err := tx.Raw("SELECT farm_device_id, nitrogen, phosphorus, potassium, temperature, humidity, timestamp, avg_moisture "+
		"FROM lst_field_data WHERE farm_id = ? ORDER BY farm_device_id", farmID).Scan(&d.Values.Field).Error; err != nil {
		return nil, err
	}
	return d, nil
}

type FarmName struct {
	FarmID   int64  `gorm:"column:farm_id" json:"farm_id"`
	FarmName string `gorm:"column:farm_name" json:"farm_name"`
}

// Rename меняет имя фермы фермера. Чужая/несуществующая ферма → ErrNotFound.
func (s *FarmStore) Rename(ctx context.Context, farmID, farmerID int64, name string) (*FarmName, error) {
	var out []FarmName
	err := s.db.WithContext(ctx).Raw(
		"UPDATE farm SET farm_name = ? WHERE farm_id = ? AND farmer_id = ? RETURNING farm_id, farm_name",
		name, farmID, farmerID).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

type Thresholds struct {
	AutoOnThreshold  int `gorm:"column:auto_on_threshold" json:"auto_on_threshold"`
	AutoOffThreshold int `gorm:"column:auto_off_threshold" json:"auto_off_threshold"`
}

func (s *FarmStore) UpdateThresholds(ctx context.Context, farmID, farmerID int64, t Thresholds) (*Thresholds, error) {
	var out []Thresholds
	err := s.db.WithContext(ctx).Raw(
		"UPDATE farm SET auto_on_threshold = ?, auto_off_threshold = ? WHERE farm_id = ? AND farmer_id = ? "+
			"RETURNING auto_on_threshold, auto_off_threshold",
		t.AutoOnThreshold, t.AutoOffThreshold, farmID, farmerID).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// History: последние perDevice записей по каждому устройству фермы.
type History struct {
	Moisture []models.MoistureData
	Valves   []models.ValveData
	Field    []models.FieldData
}

// History проверяет владельца и выгружает историю фермы для отчёта.
func (s *FarmStore) History(ctx context.Context, farmID, farmerID int64, perDevice int) (*History, error) {
	tx := s.db.WithContext(ctx)

	var n int64
	if err := tx.Model(&models.Farm{}).Where("farm_id = ? AND farmer_id = ?", farmID, farmerID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	h := &History{}
	if err := tx.Raw("SELECT moisture_data_id, section_device_id, timestamp, moisture_value FROM ("+
		"SELECT m.*, ROW_NUMBER() OVER (PARTITION BY m.section_device_id ORDER BY m.moisture_data_id DESC) AS rn "+
		"FROM moisture_data m JOIN farm_with_all_devices d ON d.section_device_id = m.section_device_id "+
		"WHERE d.farm_id = ?) t WHERE t.rn <= ? ORDER BY section_device_id, moisture_data_id DESC",
		farmID, perDevice).Scan(&h.Moisture).Error; err != nil {
		return nil, err
	}
	if err := tx.Raw("SELECT valve_data_id, section_device_id, valve_mode, valve_status, manual_off_timer, timestamp FROM ("+
		"SELECT v.*, ROW_NUMBER() OVER (PARTITION BY v.section_device_id ORDER BY v.valve_data_id DESC) AS rn "+
		"FROM valve_data v JOIN farm_with_all_devices d ON d.section_device_id = v.section_device_id "+
		"WHERE d.farm_id = ?) t WHERE t.rn <= ? ORDER BY section_device_id, valve_data_id DESC",
		farmID, perDevice).Scan(&h.Valves).Error; err != nil {
		return nil, err
	}
	if err := tx.Raw("SELECT field_data_id, farm_device_id, nitrogen, phosphorus, potassium, temperature, humidity, timestamp FROM ("+
		"SELECT f.*, ROW_NUMBER() OVER (PARTITION BY f.farm_device_id ORDER BY f.field_data_id DESC) AS rn "+
		"FROM field_data f JOIN farm_devices fd ON fd.farm_device_id = f.farm_device_id "+
		"WHERE fd.farm_id = ?) t WHERE t.rn <= ? ORDER BY farm_device_id, field_data_id DESC",
		farmID, perDevice).Scan(&h.Field).Error; err != nil {
		return nil, err
	}
	return h, nil
}
