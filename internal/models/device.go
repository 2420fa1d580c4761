package models

import (
	"time"

	"gorm.io/datatypes"
)

// SectionDevice: датчик влажности или клапан внутри секции.
// DeviceName хранит класс устройства (moisture|valve).
type SectionDevice struct {
	SectionDeviceID  int64          `gorm:"column:section_device_id;primaryKey" json:"section_device_id"`
	SectionID        int64          `gorm:"column:section_id;index;not null" json:"section_id"`
	DeviceName       DeviceClass    `gorm:"column:device_name;size:32;not null" json:"device_name"`
	DeviceLocation   datatypes.JSON `gorm:"column:device_location;type:jsonb" json:"device_location"`
	InstallationDate time.Time      `gorm:"column:installation_date;not null;default:now()" json:"installation_date"`
}

func (SectionDevice) TableName() string { return "section_devices" }

// FarmDevice: устройство уровня фермы (NPK/метео).
type FarmDevice struct {
	FarmDeviceID     int64          `gorm:"column:farm_device_id;primaryKey" json:"farm_device_id"`
	FarmID           int64          `gorm:"column:farm_id;index;not null" json:"farm_id"`
	DeviceName       DeviceClass    `gorm:"column:device_name;size:32;not null" json:"device_name"`
	DeviceLocation   datatypes.JSON `gorm:"column:device_location;type:jsonb" json:"device_location"`
	InstallationDate time.Time      `gorm:"column:installation_date;not null;default:now()" json:"installation_date"`
}

func (FarmDevice) TableName() string { return "farm_devices" }

// Телеметрия: только вставка.

type MoistureData struct {
	MoistureDataID  int64     `gorm:"column:moisture_data_id;primaryKey" json:"moisture_data_id"`
	SectionDeviceID int64     `gorm:"column:section_device_id;index:idx_moisture_device_ts,priority:1;not null" json:"section_device_id"`
	Timestamp       time.Time `gorm:"column:timestamp;index:idx_moisture_device_ts,priority:2;not null;default:now()" json:"timestamp"`
	MoistureValue   int       `gorm:"column:moisture_value;not null" json:"moisture_value"`
}

func (MoistureData) TableName() string { return "moisture_data" }

type FieldData struct {
	FieldDataID  int64     `gorm:"column:field_data_id;primaryKey" json:"field_data_id"`
	FarmDeviceID int64     `gorm:"column:farm_device_id;index:idx_field_device_ts,priority:1;not null" json:"farm_device_id"`
	Nitrogen     float64   `gorm:"column:nitrogen" json:"nitrogen"`
	Phosphorus   float64   `gorm:"column:phosphorus" json:"phosphorus"`
	Potassium    float64   `gorm:"column:potassium" json:"potassium"`
	Temperature  float64   `gorm:"column:temperature" json:"temperature"`
	Humidity     float64   `gorm:"column:humidity" json:"humidity"`
	Timestamp    time.Time `gorm:"column:timestamp;index:idx_field_device_ts,priority:2;not null;default:now()" json:"timestamp"`
}

func (FieldData) TableName() string { return "field_data" }

// ValveData: событие клапана. Текущее состояние = последнее событие,
// отдельной изменяемой таблицы нет.
type ValveData struct {
	ValveDataID     int64       `gorm:"column:valve_data_id;primaryKey" json:"valve_data_id"`
	SectionDeviceID int64       `gorm:"column:section_device_id;index:idx_valve_device_ts,priority:1;not null" json:"section_device_id"`
	ValveMode       ValveMode   `gorm:"column:valve_mode;size:16;not null" json:"valve_mode"`
	ValveStatus     ValveStatus `gorm:"column:valve_status;size:16;not null" json:"valve_status"`
	ManualOffTimer  int         `gorm:"column:manual_off_timer;not null;default:0" json:"manual_off_timer"`
	Timestamp       time.Time   `gorm:"column:timestamp;index:idx_valve_device_ts,priority:2;not null;default:now()" json:"timestamp"`
}

func (ValveData) TableName() string { return "valve_data" }

// ValveEvent: добавленное событие вместе с фермой клапана (для публикации).
type ValveEvent struct {
	ValveDataID    int64       `gorm:"column:valve_data_id" json:"valve_data_id"`
	FarmID         int64       `gorm:"column:farm_id" json:"farm_id"`
	ValveID        int64       `gorm:"column:section_device_id" json:"section_device_id"`
	Mode           ValveMode   `gorm:"column:valve_mode" json:"valve_mode"`
	Status         ValveStatus `gorm:"column:valve_status" json:"valve_status"`
	ManualOffTimer int         `gorm:"column:manual_off_timer" json:"manual_off_timer"`
	Timestamp      time.Time   `gorm:"column:timestamp" json:"timestamp"`
}
