package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

// TelemetryStore пишет и читает показания датчиков.
type TelemetryStore struct{ db *gorm.DB }

func NewTelemetryStore(db *gorm.DB) *TelemetryStore { return &TelemetryStore{db: db} }

// MoistureRow: кандидат на вставку в moisture_data.
type MoistureRow struct {
	DeviceID  int64
	Timestamp time.Time
	Value     int
}

// FieldRow: кандидат на вставку в field_data (NPK + метео).
type FieldRow struct {
	DeviceID    int64
	Nitrogen    float64
	Phosphorus  float64
	Potassium   float64
	Temperature float64
	Humidity    float64
	Timestamp   time.Time
}

// InsertMoisture вставляет пакет одним INSERT ... SELECT. Строки с чужим
// устройством или неверным ключом фермы отсекаются фильтром и не возвращаются.
func (s *TelemetryStore) InsertMoisture(ctx context.Context, farmID int64, farmKey string, rows []MoistureRow) ([]models.MoistureData, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	q, args := moistureInsert(farmID, farmKey, rows)
	var out []models.MoistureData
	if err := s.db.WithContext(ctx).Raw(q, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// InsertField: то же для NPK-устройств уровня фермы.
func (s *TelemetryStore) InsertField(ctx context.Context, farmID int64, farmKey string, rows []FieldRow) ([]models.FieldData, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	q, args := fieldInsert(farmID, farmKey, rows)
	var out []models.FieldData
	if err := s.db.WithContext(ctx).Raw(q, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func moistureInsert(farmID int64, farmKey string, rows []MoistureRow) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(rows)*3+3)

	b.WriteString("INSERT INTO moisture_data (section_device_id, timestamp, moisture_value) ")
	b.WriteString("SELECT v.section_device_id, v.timestamp, v.moisture_value FROM (VALUES ")
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?::bigint, ?::timestamptz, ?::int)")
		args = append(args, r.DeviceID, r.Timestamp, r.Value)
	}
	b.WriteString(") AS v (section_device_id, timestamp, moisture_value) ")
	b.WriteString("WHERE v.section_device_id IN (SELECT section_device_id FROM farm_with_all_devices ")
	b.WriteString("WHERE farm_id = ? AND section_device_name = ? AND farm_key = ?) ")
	b.WriteString("RETURNING moisture_data_id, section_device_id, timestamp, moisture_value")
	args = append(args, farmID, string(models.ClassMoisture), farmKey)
	return b.String(), args
}

func fieldInsert(farmID int64, farmKey string, rows []FieldRow) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(rows)*7+3)

	b.WriteString("INSERT INTO field_data (farm_device_id, nitrogen, phosphorus, potassium, temperature, humidity, timestamp) ")
	b.WriteString("SELECT v.farm_device_id, v.nitrogen, v.phosphorus, v.potassium, v.temperature, v.humidity, v.timestamp FROM (VALUES ")
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?::bigint, ?::double precision, ?::double precision, ?::double precision, ?::double precision, ?::double precision, ?::timestamptz)")
		args = append(args, r.DeviceID, r.Nitrogen, r.Phosphorus, r.Potassium, r.Temperature, r.Humidity, r.Timestamp)
	}
	b.WriteString(") AS v (farm_device_id, nitrogen, phosphorus, potassium, temperature, humidity, timestamp) ")
	b.WriteString("WHERE v.farm_device_id IN (SELECT farm_device_id FROM farm_with_farm_devices ")
	b.WriteString("WHERE farm_id = ? AND farm_device_name = ? AND farm_key = ?) ")
	b.WriteString("RETURNING field_data_id, farm_device_id, nitrogen, phosphorus, potassium, temperature, humidity, timestamp")
	args = append(args, farmID, string(models.ClassNPK), farmKey)
	return b.String(), args
}

// RecentMoisture: последние limit показаний датчика, новые первыми.
func (s *TelemetryStore) RecentMoisture(ctx context.Context, deviceID int64, limit int) ([]models.MoistureData, error) {
	var out []models.MoistureData
	err := s.db.WithContext(ctx).
		Where("section_device_id = ?", deviceID).
		Order("moisture_data_id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *TelemetryStore) RecentField(ctx context.Context, farmDeviceID int64, limit int) ([]models.FieldData, error) {
	var out []models.FieldData
	err := s.db.WithContext(ctx).
		Where("farm_device_id = ?", farmDeviceID).
		Order("field_data_id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
