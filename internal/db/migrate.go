package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

// Models: всё, что создаёт AutoMigrate.
func Models() []any {
	return []any{
		&models.Admin{},
		&models.Farmer{},
		&models.Farm{},
		&models.Section{},
		&models.SectionDevice{},
		&models.FarmDevice{},
		&models.MoistureData{},
		&models.FieldData{},
		&models.ValveData{},
	}
}

// Migrate создаёт таблицы и пересоздаёт представления агрегатов.
func Migrate(d *gorm.DB) error {
	if err := d.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return createViews(d)
}

func createViews(d *gorm.DB) error {
	for _, v := range views {
		if err := d.Exec(v.sql).Error; err != nil {
			return fmt.Errorf("create view %s: %w", v.name, err)
		}
	}
	return nil
}
