package admin

import (
	"encoding/json"
	"net/http"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/httpx"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

type Handler struct {
	d Dependencies
}

// target: общая часть тел admin-запросов. Какие id обязательны, решает обработчик.
type target struct {
	AdminID   models.ID       `json:"admin_id"`
	FarmerID  models.ID       `json:"farmer_id"`
	FarmID    models.ID       `json:"farm_id"`
	SectionID models.ID       `json:"section_id"`
	UpdateKey string          `json:"update_key"`
	UpdateVal json.RawMessage `json:"update_val"`
}

func (t target) require(verr *models.ValidationError, fields ...string) {
	ids := map[string]models.ID{
		"admin_id":   t.AdminID,
		"farmer_id":  t.FarmerID,
		"farm_id":    t.FarmID,
		"section_id": t.SectionID,
	}
	for _, f := range fields {
		switch f {
		case "update_key":
			if t.UpdateKey == "" {
				verr.Add(f, "required")
			}
		case "update_val":
			if len(t.UpdateVal) == 0 || string(t.UpdateVal) == "null" {
				verr.Add(f, "required")
			}
		default:
			if ids[f] <= 0 {
				verr.Add(f, "required")
			}
		}
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, fields ...string) (target, bool) {
	var t target
	if err := httpx.Decode(r, &t); err != nil {
		httpx.WriteError(w, r, err)
		return t, false
	}
	verr := &models.ValidationError{}
	t.require(verr, fields...)
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return t, false
	}
	return t, true
}

func (h *Handler) changed() {
	if h.d.Changed != nil {
		h.d.Changed()
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	t, ok := h.decode(w, r, "admin_id")
	if !ok {
		return
	}
	out, err := h.d.Store.Dashboard(r.Context(), t.AdminID.Int64())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

type newFarmer struct {
	Fname    string `json:"farmer_fname"`
	Lname    string `json:"farmer_lname"`
	Password string `json:"farmer_password"`
	Phone    string `json:"farmer_phone"`
	Email    string `json:"farmer_email"`
}

func (h *Handler) CreateFarmer(w http.ResponseWriter, r *http.Request) {
	adminID, err := httpx.PathID(r, "admin_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req newFarmer
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	verr := &models.ValidationError{}
	f := models.Farmer{
		AdminID:     adminID,
		FarmerFname: httpx.Trimmed(verr, "farmer_fname", req.Fname),
		FarmerLname: httpx.Trimmed(verr, "farmer_lname", req.Lname),
		FarmerPhone: httpx.Trimmed(verr, "farmer_phone", req.Phone),
		FarmerEmail: httpx.Trimmed(verr, "farmer_email", req.Email),
	}
	if req.Password == "" {
		verr.Add("farmer_password", "required")
	}
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	hash, err := h.d.HashPassword(req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	f.FarmerPassword = hash

	out, err := h.d.Store.CreateFarmer(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.changed()
	models.WriteJSON(w, http.StatusCreated, map[string]any{"message": "farmer added", "farmer_data": out})
}

func (h *Handler) UpdateFarmer(w http.ResponseWriter, r *http.Request) {
	t, ok := h.decode(w, r, "admin_id", "farmer_id", "update_key", "update_val")
	if !ok {
		return
	}
	u, err := parseFarmerUpdate(t.UpdateKey, t.UpdateVal, h.d.HashPassword)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.d.Store.UpdateFarmer(r.Context(), t.AdminID.Int64(), t.FarmerID.Int64(), u); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"message":      "farmer updated",
		"updated_data": map[string]any{"farmer_id": t.FarmerID, "update_key": t.UpdateKey},
	})
}

func (h *Handler) Farms(w http.ResponseWriter, r *http.Request) {
	t, ok := h.decode(w, r, "admin_id", "farmer_id")
	if !ok {
		return
	}
	out, err := h.d.Store.Farms(r.Context(), t.AdminID.Int64(), t.FarmerID.Int64())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"farm_data": out})
}

func (h *Handler) UpdateFarm(w http.ResponseWriter, r *http.Request) {
	t, ok := h.decode(w, r, "admin_id", "farmer_id", "farm_id", "update_key", "update_val")
	if !ok {
		return
	}
	u, err := parseFarmUpdate(t.UpdateKey, t.UpdateVal)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.d.Store.UpdateFarm(r.Context(), t.AdminID.Int64(), t.FarmerID.Int64(), t.FarmID.Int64(), u); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.changed()
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"message":      "farm updated",
		"updated_data": map[string]any{"farm_id": t.FarmID, "update_key": t.UpdateKey},
	})
}

func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	t, ok := h.decode(w, r, "admin_id", "farmer_id", "farm_id")
	if !ok {
		return
	}
	out, err := h.d.Store.Sections(r.Context(), t.AdminID.Int64(), t.FarmerID.Int64(), t.FarmID.Int64())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"section_data": out})
}

func (h *Handler) SectionDevices(w http.ResponseWriter, r *http.Request) {
	t, ok := h.decode(w, r, "admin_id", "farmer_id", "farm_id", "section_id")
	if !ok {
		return
	}
	out, err := h.d.Store.SectionDevices(r.Context(), t.AdminID.Int64(), t.FarmerID.Int64(), t.FarmID.Int64(), t.SectionID.Int64())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"section_devices_data": out})
}
