package farmer

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/irrigation"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

type Farms interface {
	FarmerOverview(ctx context.Context, farmerID int64) (*repo.FarmerOverview, error)
	Detail(ctx context.Context, farmID int64) (*repo.FarmDetail, error)
	Rename(ctx context.Context, farmID, farmerID int64, name string) (*repo.FarmName, error)
	UpdateThresholds(ctx context.Context, farmID, farmerID int64, t repo.Thresholds) (*repo.Thresholds, error)
	History(ctx context.Context, farmID, farmerID int64, perDevice int) (*repo.History, error)
}

type Readings interface {
	RecentMoisture(ctx context.Context, deviceID int64, limit int) ([]models.MoistureData, error)
	RecentField(ctx context.Context, farmDeviceID int64, limit int) ([]models.FieldData, error)
}

type ValveLog interface {
	Recent(ctx context.Context, valveID int64, limit int) ([]models.ValveData, error)
}

type Engine interface {
	Command(ctx context.Context, c irrigation.Command) (models.ValveEvent, error)
	Sweep(ctx context.Context, r irrigation.SweepRequest) (irrigation.SweepResult, error)
}

type Dependencies struct {
	Farms    Farms
	Readings Readings
	Valves   ValveLog
	Engine   Engine
}

// Attach: /farmer/*. Конкретные пути /farmer/farm/... регистрируются до /farmer/farm/{farm_id}.
func Attach(r *mux.Router, d Dependencies) {
	h := &Handler{d: d}
	sub := r.PathPrefix("/farmer").Subrouter()

	sub.HandleFunc("/farm/valve/{valve_id}", h.ValveHistory).Methods(http.MethodGet)
	sub.HandleFunc("/farm/valve/{valve_id}", h.ValveCommand).Methods(http.MethodPost)
	sub.HandleFunc("/farm/moisture/{sensor_id}", h.MoistureHistory).Methods(http.MethodGet)
	sub.HandleFunc("/farm/farm_device/{farm_device_id}", h.FieldHistory).Methods(http.MethodGet)
	sub.HandleFunc("/farm/farm_name/{farm_id}", h.RenameFarm).Methods(http.MethodPut)
	sub.HandleFunc("/farm/auto_threshold/{farm_id}", h.UpdateThresholds).Methods(http.MethodPut)
	sub.HandleFunc("/farm/all_valve/{farm_id}", h.SweepFarm).Methods(http.MethodPost)
	sub.HandleFunc("/farm/{farm_id}/export", h.Export).Methods(http.MethodGet)
	sub.HandleFunc("/farm/{farm_id}", h.FarmDetail).Methods(http.MethodGet)
	sub.HandleFunc("/{farmer_id}", h.Overview).Methods(http.MethodGet)
}
