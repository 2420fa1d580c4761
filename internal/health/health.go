package health

import (
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
)

// Check: одна проверка готовности (БД, redis).
type Check struct {
	Name string
	Ping func() error
}

// DBCheck пингует пул gorm.
func DBCheck(db *gorm.DB) Check {
	return Check{Name: "db", Ping: func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	}}
}

// RegisterRoutes: /healthz всегда, /readyz по списку проверок.
func RegisterRoutes(r *mux.Router, checks ...Check) {
	r.HandleFunc("/healthz", liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		for _, c := range checks {
			if err := c.Ping(); err != nil {
				logs.Logger.WithError(err).Warnf("readiness: %s unreachable", c.Name)
				http.Error(w, c.Name+" unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
