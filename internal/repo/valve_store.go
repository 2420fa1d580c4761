package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

// ValveStore: события клапанов (только добавление) и снимки lst_valve_avg_moisture.
type ValveStore struct{ db *gorm.DB }

func NewValveStore(db *gorm.DB) *ValveStore { return &ValveStore{db: db} }

// ValveSnapshot: последнее событие клапана + пороги фермы + средняя влажность секции.
// Mode/Status/Timestamp == nil, если у клапана ещё не было событий.
type ValveSnapshot struct {
	FarmID           int64      `gorm:"column:farm_id" json:"-"`
	SectionID        int64      `gorm:"column:section_id" json:"section_id"`
	SectionName      string     `gorm:"column:section_name" json:"section_name"`
	ValveID          int64      `gorm:"column:section_device_id" json:"section_device_id"`
	Mode             *string    `gorm:"column:valve_mode" json:"valve_mode"`
	Status           *string    `gorm:"column:valve_status" json:"valve_status"`
	Timestamp        *time.Time `gorm:"column:valve_timestamp" json:"timestamp"`
	ManualOffTimer   *int       `gorm:"column:manual_off_timer" json:"manual_off_timer"`
	AutoOnThreshold  int        `gorm:"column:auto_on_threshold" json:"auto_on_threshold"`
	AutoOffThreshold int        `gorm:"column:auto_off_threshold" json:"auto_off_threshold"`
	AvgMoisture      *float64   `gorm:"column:avg_section_moisture" json:"avg_section_moisture"`
}

const snapshotColumns = "farm_id, section_id, section_name, section_device_id, valve_mode, valve_status, " +
	"valve_timestamp, manual_off_timer, auto_on_threshold, auto_off_threshold, avg_section_moisture"

const eventColumns = "valve_data_id, section_device_id, valve_mode, valve_status, manual_off_timer, timestamp"

// Aggregates отдаёт снимок всех клапанов фермы в пределах scope.
// Пусто (нет клапанов, неверный ключ, чужая ферма) → ErrNotFound.
func (s *ValveStore) Aggregates(ctx context.Context, scope Scope) ([]ValveSnapshot, error) {
	cond, args := scope.where()
	var out []ValveSnapshot
	err := s.db.WithContext(ctx).
		Table("lst_valve_avg_moisture").
		Select(snapshotColumns).
		Where(cond, args...).
		Order("section_device_id").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// AppendEvents пишет все события одним многострочным INSERT.
// FarmID в ответе берётся из входных событий.
func (s *ValveStore) AppendEvents(ctx context.Context, events []models.ValveEvent) ([]models.ValveEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}
	var b strings.Builder
	args := make([]any, 0, len(events)*5)
	farmOf := make(map[int64]int64, len(events))

	b.WriteString("INSERT INTO valve_data (section_device_id, valve_mode, valve_status, manual_off_timer, timestamp) VALUES ")
	for i, e := range events {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, e.ValveID, string(e.Mode), string(e.Status), e.ManualOffTimer, e.Timestamp)
		farmOf[e.ValveID] = e.FarmID
	}
	b.WriteString(" RETURNING " + eventColumns)

	var out []models.ValveEvent
	if err := s.db.WithContext(ctx).Raw(b.String(), args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		out[i].FarmID = farmOf[out[i].ValveID]
	}
	return out, nil
}

// AppendScoped добавляет одно событие, только если клапан существует и
// виден в scope. Проверка и вставка идут одним оператором.
func (s *ValveStore) AppendScoped(ctx context.Context, scope Scope, e models.ValveEvent) (models.ValveEvent, error) {
	cond, scopeArgs := scope.where()
	q := "WITH target AS (" +
		"SELECT farm_id FROM farm_with_all_devices " +
		"WHERE section_device_name = ? AND section_device_id = ? AND " + cond + " LIMIT 1), " +
		"ins AS (INSERT INTO valve_data (section_device_id, valve_mode, valve_status, manual_off_timer, timestamp) " +
		"SELECT CAST(? AS bigint), CAST(? AS varchar), CAST(? AS varchar), CAST(? AS int), CAST(? AS timestamptz) FROM target " +
		"RETURNING " + eventColumns + ") " +
		"SELECT ins.valve_data_id, target.farm_id, ins.section_device_id, ins.valve_mode, ins.valve_status, " +
		"ins.manual_off_timer, ins.timestamp FROM ins CROSS JOIN target"

	args := make([]any, 0, 7+len(scopeArgs))
	args = append(args, string(models.ClassValve), e.ValveID)
	args = append(args, scopeArgs...)
	args = append(args, e.ValveID, string(e.Mode), string(e.Status), e.ManualOffTimer, e.Timestamp)

	var out []models.ValveEvent
	if err := s.db.WithContext(ctx).Raw(q, args...).Scan(&out).Error; err != nil {
		return models.ValveEvent{}, err
	}
	if len(out) == 0 {
		return models.ValveEvent{}, ErrNotFound
	}
	return out[0], nil
}

// Recent: последние limit событий клапана.
func (s *ValveStore) Recent(ctx context.Context, valveID int64, limit int) ([]models.ValveData, error) {
	var out []models.ValveData
	err := s.db.WithContext(ctx).
		Where("section_device_id = ?", valveID).
		Order("valve_data_id DESC").
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

// AutoFarms: фермы, где хотя бы один клапан сейчас в режиме auto.
func (s *ValveStore) AutoFarms(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Raw("SELECT DISTINCT farm_id FROM lst_valve_avg_moisture WHERE valve_mode = ? ORDER BY farm_id", string(models.ModeAuto)).
		Scan(&ids).Error
	return ids, err
}
