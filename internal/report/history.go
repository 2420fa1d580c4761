package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SheetMoisture = "moisture"
	SheetValve    = "valve"
	SheetField    = "field"
)

// WriteHistory: xlsx с тремя листами истории фермы.
func WriteHistory(w io.Writer, h *repo.History) error {
	f := excelize.NewFile()
	defer f.Close()

	moisture := [][]interface{}{{"moisture_data_id", "section_device_id", "timestamp", "moisture_value"}}
	for _, m := range h.Moisture {
		moisture = append(moisture, []interface{}{m.MoistureDataID, m.SectionDeviceID, ts(m.Timestamp), m.MoistureValue})
	}
	valves := [][]interface{}{{"valve_data_id", "section_device_id", "valve_mode", "valve_status", "manual_off_timer", "timestamp"}}
	for _, v := range h.Valves {
		valves = append(valves, []interface{}{v.ValveDataID, v.SectionDeviceID, string(v.ValveMode), string(v.ValveStatus), v.ManualOffTimer, ts(v.Timestamp)})
	}
	field := [][]interface{}{{"field_data_id", "farm_device_id", "nitrogen", "phosphorus", "potassium", "temperature", "humidity", "timestamp"}}
	for _, d := range h.Field {
		field = append(field, []interface{}{d.FieldDataID, d.FarmDeviceID, d.Nitrogen, d.Phosphorus, d.Potassium, d.Temperature, d.Humidity, ts(d.Timestamp)})
	}

	for _, s := range []struct {
		name string
		rows [][]interface{}
	}{{SheetMoisture, moisture}, {SheetValve, valves}, {SheetField, field}} {
		if err := fill(f, s.name, s.rows); err != nil {
			return err
		}
	}
	// лист по умолчанию не нужен
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex(SheetMoisture); err == nil {
		f.SetActiveSheet(idx)
	}
	return f.Write(w)
}

func fill(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func ts(t time.Time) string { return t.UTC().Format(time.RFC3339) }
