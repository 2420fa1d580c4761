package models

import (
	"time"

	"gorm.io/datatypes"
)

// Admin: оператор платформы, заводит фермеров.
type Admin struct {
	AdminID       int64     `gorm:"column:admin_id;primaryKey" json:"admin_id"`
	AdminFname    string    `gorm:"column:admin_fname;size:100;not null" json:"admin_fname"`
	AdminLname    string    `gorm:"column:admin_lname;size:100" json:"admin_lname"`
	AdminEmail    string    `gorm:"column:admin_email;size:255;uniqueIndex" json:"admin_email"`
	AdminPassword string    `gorm:"column:admin_password;size:255;not null" json:"-"`
	AdminLocation string    `gorm:"column:admin_location;size:255" json:"admin_location"`
	JoinDate      time.Time `gorm:"column:join_date;not null;default:now()" json:"join_date"`
}

func (Admin) TableName() string { return "admin" }

type Farmer struct {
	FarmerID       int64     `gorm:"column:farmer_id;primaryKey" json:"farmer_id"`
	FarmerFname    string    `gorm:"column:farmer_fname;size:100;not null" json:"farmer_fname"`
	FarmerLname    string    `gorm:"column:farmer_lname;size:100;not null" json:"farmer_lname"`
	FarmerPassword string    `gorm:"column:farmer_password;size:255;not null" json:"-"` // argon2id, см. internal/secrets
	FarmerPhone    string    `gorm:"column:farmer_phone;size:32;not null" json:"farmer_phone"`
	FarmerEmail    string    `gorm:"column:farmer_email;size:255;not null" json:"farmer_email"`
	JoinDate       time.Time `gorm:"column:join_date;not null;default:now()" json:"join_date"`
	AdminID        int64     `gorm:"column:admin_id;index;not null" json:"admin_id"`
}

func (Farmer) TableName() string { return "farmer" }

// Farm хранит общий ключ устройств фермы и пороги авто-полива (проценты 0..100).
type Farm struct {
	FarmID                 int64          `gorm:"column:farm_id;primaryKey" json:"farm_id"`
	FarmName               string         `gorm:"column:farm_name;size:255;not null" json:"farm_name"`
	FarmSize               float64        `gorm:"column:farm_size;not null;default:0" json:"farm_size"`
	FarmLocationCordinates datatypes.JSON `gorm:"column:farm_location_cordinates;type:jsonb" json:"farm_location_cordinates"`
	FarmKey                string         `gorm:"column:farm_key;size:255;not null" json:"farm_key,omitempty"`
	AutoOnThreshold        int            `gorm:"column:auto_on_threshold;not null;default:30;check:auto_on_threshold BETWEEN 0 AND 100" json:"auto_on_threshold"`
	AutoOffThreshold       int            `gorm:"column:auto_off_threshold;not null;default:70;check:auto_off_threshold BETWEEN 0 AND 100" json:"auto_off_threshold"`
	FarmerID               int64          `gorm:"column:farmer_id;index;not null" json:"farmer_id"`
}

func (Farm) TableName() string { return "farm" }

type Section struct {
	SectionID    int64     `gorm:"column:section_id;primaryKey" json:"section_id"`
	SectionName  string    `gorm:"column:section_name;size:255;not null" json:"section_name"`
	FarmID       int64     `gorm:"column:farm_id;index;not null" json:"farm_id"`
	CreationDate time.Time `gorm:"column:creation_date;not null;default:now()" json:"creation_date"`
}

func (Section) TableName() string { return "section" }
