package admin

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

type Store interface {
	Dashboard(ctx context.Context, adminID int64) (*repo.AdminDashboard, error)
	CreateFarmer(ctx context.Context, f models.Farmer) (*models.Farmer, error)
	UpdateFarmer(ctx context.Context, adminID, farmerID int64, u repo.FarmerUpdate) error
	Farms(ctx context.Context, adminID, farmerID int64) ([]models.Farm, error)
	UpdateFarm(ctx context.Context, adminID, farmerID, farmID int64, u repo.FarmUpdate) error
	Sections(ctx context.Context, adminID, farmerID, farmID int64) ([]repo.SectionRow, error)
	SectionDevices(ctx context.Context, adminID, farmerID, farmID, sectionID int64) ([]repo.SectionDeviceRow, error)
}

type Dependencies struct {
	Store Store
	// HashPassword: argon2id из internal/secrets.
	HashPassword func(string) (string, error)
	// Changed вызывается после успешной записи (сброс кэша главной).
	Changed func()
}

// Attach: /admin/*. /admin/farmer/farm... до /admin/farmer/{admin_id}.
func Attach(r *mux.Router, d Dependencies) {
	h := &Handler{d: d}
	sub := r.PathPrefix("/admin").Subrouter()

	sub.HandleFunc("", h.Dashboard).Methods(http.MethodPost)
	sub.HandleFunc("/farmer", h.UpdateFarmer).Methods(http.MethodPatch)
	sub.HandleFunc("/farmer/farm", h.Farms).Methods(http.MethodPost)
	sub.HandleFunc("/farmer/farm", h.UpdateFarm).Methods(http.MethodPatch)
	sub.HandleFunc("/farmer/farm/section", h.Sections).Methods(http.MethodPost)
	sub.HandleFunc("/farmer/farm/section/devices", h.SectionDevices).Methods(http.MethodPost)
	sub.HandleFunc("/farmer/{admin_id}", h.CreateFarmer).Methods(http.MethodPost)
}
