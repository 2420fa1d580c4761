package farmer

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/httpx"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/irrigation"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/report"
)

const (
	recentLimit   = 10
	exportDefault = 100
	exportMax     = 1000
)

type Handler struct {
	d Dependencies
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	farmerID, err := httpx.PathID(r, "farmer_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out, err := h.d.Farms.FarmerOverview(r.Context(), farmerID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) FarmDetail(w http.ResponseWriter, r *http.Request) {
	farmID, err := httpx.PathID(r, "farm_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out, err := h.d.Farms.Detail(r.Context(), farmID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// ---------- история ----------

func (h *Handler) ValveHistory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "valve_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	rows, err := h.d.Valves.Recent(r.Context(), id, recentLimit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) MoistureHistory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "sensor_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	rows, err := h.d.Readings.RecentMoisture(r.Context(), id, recentLimit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) FieldHistory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "farm_device_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	rows, err := h.d.Readings.RecentField(r.Context(), id, recentLimit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, rows)
}

// ---------- изменения фермы ----------

type renameRequest struct {
	FarmerID models.ID `json:"farmer_id"`
	FarmName string    `json:"farm_name"`
}

func (h *Handler) RenameFarm(w http.ResponseWriter, r *http.Request) {
	farmID, err := httpx.PathID(r, "farm_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req renameRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	verr := &models.ValidationError{}
	requireID(verr, "farmer_id", req.FarmerID)
	name := httpx.Trimmed(verr, "farm_name", req.FarmName)
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out, err := h.d.Farms.Rename(r.Context(), farmID, req.FarmerID.Int64(), name)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"message": "farm name updated", "farm_updated_name": out})
}

type thresholdRequest struct {
	FarmerID models.ID `json:"farmer_id"`
	On       *int      `json:"auto_on_threshold"`
	Off      *int      `json:"auto_off_threshold"`
}

func (h *Handler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	farmID, err := httpx.PathID(r, "farm_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req thresholdRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	verr := &models.ValidationError{}
	requireID(verr, "farmer_id", req.FarmerID)
	percent(verr, "auto_on_threshold", req.On)
	percent(verr, "auto_off_threshold", req.Off)
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out, err := h.d.Farms.UpdateThresholds(r.Context(), farmID, req.FarmerID.Int64(),
		repo.Thresholds{AutoOnThreshold: *req.On, AutoOffThreshold: *req.Off})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"message": "auto threshold updated", "auto_threshold_update": out})
}

// ---------- клапаны ----------

type valveRequest struct {
	FarmerID models.ID `json:"farmer_id"`
	Mode     string    `json:"mode"`
	Status   string    `json:"status"`
	Timer    int       `json:"timer"`
}

func (h *Handler) ValveCommand(w http.ResponseWriter, r *http.Request) {
	valveID, err := httpx.PathID(r, "valve_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req valveRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	verr := &models.ValidationError{}
	requireID(verr, "farmer_id", req.FarmerID)
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	ev, err := h.d.Engine.Command(r.Context(), irrigation.Command{
		ValveID: valveID,
		Mode:    req.Mode,
		Status:  req.Status,
		Timer:   req.Timer,
		Scope:   repo.FarmerScope(req.FarmerID.Int64(), 0),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"message": "valve data inserted", "valve_data": ev})
}

// SweepFarm: команда на все клапаны фермы; в auto статус считает движок.
func (h *Handler) SweepFarm(w http.ResponseWriter, r *http.Request) {
	farmID, err := httpx.PathID(r, "farm_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req valveRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	verr := &models.ValidationError{}
	requireID(verr, "farmer_id", req.FarmerID)
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.d.Engine.Sweep(r.Context(), irrigation.SweepRequest{
		Scope:  repo.FarmerScope(req.FarmerID.Int64(), farmID),
		Mode:   req.Mode,
		Status: req.Status,
		Timer:  req.Timer,
		Source: irrigation.SourceSweep,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "valve data processed",
		"evaluated": res.Evaluated,
		"appended":  len(res.Appended),
	})
}

// ---------- выгрузка ----------

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	farmID, err := httpx.PathID(r, "farm_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	farmerID, err := httpx.QueryID(r, "farmer_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	limit := exportDefault
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > exportMax {
			httpx.WriteError(w, r, models.Invalid("limit", fmt.Sprintf("must be in 1..%d", exportMax)))
			return
		}
		limit = n
	}

	hist, err := h.d.Farms.History(r.Context(), farmID, farmerID, limit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=farm_%d_history.xlsx", farmID))
	if err := report.WriteHistory(w, hist); err != nil {
		// заголовки уже ушли, остаётся только лог
		logs.Logger.WithError(err).WithField("farm_id", farmID).Error("xlsx export failed")
	}
}

func requireID(verr *models.ValidationError, field string, id models.ID) {
	if id <= 0 {
		verr.Add(field, "required")
	}
}

func percent(verr *models.ValidationError, field string, v *int) {
	switch {
	case v == nil:
		verr.Add(field, "required")
	case *v < 0 || *v > 100:
		verr.Add(field, "must be in 0..100")
	}
}
