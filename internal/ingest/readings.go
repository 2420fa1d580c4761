package ingest

import (
	"fmt"
	"time"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// MoistureReading: одно показание датчика влажности (целые проценты).
type MoistureReading struct {
	DeviceID  models.ID         `json:"moisture_device_id"`
	Timestamp *models.Timestamp `json:"timestamp,omitempty"`
	Value     *int              `json:"value"`
}

// NPKReading: показание NPK/метео устройства фермы.
type NPKReading struct {
	DeviceID    models.ID         `json:"npk_device_id"`
	Nitrogen    *float64          `json:"nitrogen"`
	Phosphorus  *float64          `json:"phosphorus"`
	Potassium   *float64          `json:"potassium"`
	Temperature *float64          `json:"temperature"`
	Humidity    *float64          `json:"humidity"`
	Timestamp   *models.Timestamp `json:"timestamp,omitempty"`
}

type MoistureBatch struct {
	FarmKey string            `json:"farm_key"`
	Data    []MoistureReading `json:"data"`
}

type NPKBatch struct {
	FarmKey string       `json:"farm_key"`
	Data    []NPKReading `json:"data"`
}

// Result: сколько строк пакета принято и сколько отброшено фильтром.
type Result struct {
	Accepted int `json:"accepted_rows"`
	Rejected int `json:"rejected_rows"`
}

func checkHeader(farmKey string, n, max int) *models.ValidationError {
	verr := &models.ValidationError{}
	if farmKey == "" {
		verr.Add("farm_key", "required")
	}
	switch {
	case n == 0:
		verr.Add("data", "no data provided for insertion")
	case n > max:
		verr.Add("data", fmt.Sprintf("batch too large: %d rows, limit %d", n, max))
	}
	return verr
}

// moistureRows переводит пакет в строки вставки; время по умолчанию now.
func moistureRows(b MoistureBatch, now time.Time, max int) ([]repo.MoistureRow, error) {
	verr := checkHeader(b.FarmKey, len(b.Data), max)
	if err := verr.Err(); err != nil {
		return nil, err
	}
	rows := make([]repo.MoistureRow, 0, len(b.Data))
	for i, r := range b.Data {
		field := fmt.Sprintf("data[%d]", i)
		if r.DeviceID == 0 {
			verr.Add(field+".moisture_device_id", "required")
		}
		if r.Value == nil {
			verr.Add(field+".value", "required")
			continue
		}
		ts := now
		if r.Timestamp != nil {
			ts = r.Timestamp.Time
		}
		rows = append(rows, repo.MoistureRow{DeviceID: r.DeviceID.Int64(), Timestamp: ts, Value: *r.Value})
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func npkRows(b NPKBatch, now time.Time, max int) ([]repo.FieldRow, error) {
	verr := checkHeader(b.FarmKey, len(b.Data), max)
	if err := verr.Err(); err != nil {
		return nil, err
	}
	rows := make([]repo.FieldRow, 0, len(b.Data))
	for i, r := range b.Data {
		field := fmt.Sprintf("data[%d]", i)
		if r.DeviceID == 0 {
			verr.Add(field+".npk_device_id", "required")
		}
		vals := []struct {
			name string
			v    *float64
		}{
			{"nitrogen", r.Nitrogen},
			{"phosphorus", r.Phosphorus},
			{"potassium", r.Potassium},
			{"temperature", r.Temperature},
			{"humidity", r.Humidity},
		}
		missing := false
		for _, x := range vals {
			if x.v == nil {
				verr.Add(field+"."+x.name, "required")
				missing = true
			}
		}
		if missing {
			continue
		}
		ts := now
		if r.Timestamp != nil {
			ts = r.Timestamp.Time
		}
		rows = append(rows, repo.FieldRow{
			DeviceID:    r.DeviceID.Int64(),
			Nitrogen:    *r.Nitrogen,
			Phosphorus:  *r.Phosphorus,
			Potassium:   *r.Potassium,
			Temperature: *r.Temperature,
			Humidity:    *r.Humidity,
			Timestamp:   ts,
		})
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
