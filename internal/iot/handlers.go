package iot

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/httpx"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/ingest"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/irrigation"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// Ingester: приём пакетов телеметрии.
type Ingester interface {
	IngestMoisture(ctx context.Context, farmID int64, b ingest.MoistureBatch) (ingest.Result, error)
	IngestNPK(ctx context.Context, farmID int64, b ingest.NPKBatch) (ingest.Result, error)
}

// Valves: чтение снимка и команды клапанам.
type Valves interface {
	Snapshot(ctx context.Context, scope repo.Scope) ([]repo.ValveSnapshot, error)
	Command(ctx context.Context, c irrigation.Command) (models.ValveEvent, error)
}

type Handler struct {
	ingest Ingester
	valves Valves
}

func NewHandler(i Ingester, v Valves) *Handler { return &Handler{ingest: i, valves: v} }

type ingestResponse struct {
	Message string `json:"message"`
	ingest.Result
}

func (h *Handler) Moisture(w http.ResponseWriter, r *http.Request) {
	farmID, err := httpx.PathID(r, "farm_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var b ingest.MoistureBatch
	if err := httpx.Decode(r, &b); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.ingest.IngestMoisture(r.Context(), farmID, b)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, ingestResponse{Message: "moisture data inserted", Result: res})
}

func (h *Handler) NPK(w http.ResponseWriter, r *http.Request) {
	farmID, err := httpx.PathID(r, "farm_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var b ingest.NPKBatch
	if err := httpx.Decode(r, &b); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.ingest.IngestNPK(r.Context(), farmID, b)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, ingestResponse{Message: "npk data inserted", Result: res})
}

// ValveView: то, что контроллер клапанов читает для решения на месте.
type ValveView struct {
	ValveID          int64      `json:"section_device_id"`
	Mode             *string    `json:"valve_mode"`
	Status           *string    `json:"valve_status"`
	Timestamp        *time.Time `json:"timestamp"`
	ManualOffTimer   *int       `json:"manual_off_timer"`
	AutoOnThreshold  int        `json:"auto_on_threshold"`
	AutoOffThreshold int        `json:"auto_off_threshold"`
	AvgMoisture      *float64   `json:"avg_section_moisture"`
}

func toView(s repo.ValveSnapshot) ValveView {
	v := ValveView{
		ValveID:          s.ValveID,
		Mode:             s.Mode,
		Status:           s.Status,
		Timestamp:        s.Timestamp,
		ManualOffTimer:   s.ManualOffTimer,
		AutoOnThreshold:  s.AutoOnThreshold,
		AutoOffThreshold: s.AutoOffThreshold,
	}
	if s.AvgMoisture != nil {
		avg := math.Round(*s.AvgMoisture)
		v.AvgMoisture = &avg
	}
	return v
}

// ValveState: farm_key берётся из query, иначе из тела (старые прошивки шлют GET с телом).
func (h *Handler) ValveState(w http.ResponseWriter, r *http.Request) {
	farmID, err := httpx.PathID(r, "farm_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	key := r.URL.Query().Get("farm_key")
	if key == "" {
		var body struct {
			FarmKey string `json:"farm_key"`
		}
		if err := httpx.DecodeOptional(r, &body); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		key = body.FarmKey
	}
	if key == "" {
		httpx.WriteError(w, r, models.Invalid("farm_key", "required"))
		return
	}

	snaps, err := h.valves.Snapshot(r.Context(), repo.DeviceScope(farmID, key))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]ValveView, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, toView(s))
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"message": "valve data fetched", "data": out})
}

type valveCommand struct {
	Mode      string            `json:"mode"`
	Status    string            `json:"status"`
	Timer     int               `json:"timer"`
	Timestamp *models.Timestamp `json:"timestamp"`
	FarmID    models.ID         `json:"farm_id"`
	FarmKey   string            `json:"farm_key"`
}

// ValveCommand: устройство само сообщает о переключении клапана.
func (h *Handler) ValveCommand(w http.ResponseWriter, r *http.Request) {
	valveID, err := httpx.PathID(r, "valve_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var body valveCommand
	if err := httpx.Decode(r, &body); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	verr := &models.ValidationError{}
	if body.FarmID <= 0 {
		verr.Add("farm_id", "required")
	}
	if body.FarmKey == "" {
		verr.Add("farm_key", "required")
	}
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	ev, err := h.valves.Command(r.Context(), irrigation.Command{
		ValveID:   valveID,
		Mode:      body.Mode,
		Status:    body.Status,
		Timer:     body.Timer,
		Timestamp: body.Timestamp.TimePtr(),
		Scope:     repo.DeviceScope(body.FarmID.Int64(), body.FarmKey),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"message": "valve data inserted", "valve_data": ev})
}
