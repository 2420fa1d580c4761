package iot

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes: /iot/* для устройств, доступ по ключу фермы.
func RegisterRoutes(r *mux.Router, h *Handler) {
	s := r.PathPrefix("/iot").Subrouter()
	s.HandleFunc("/moisture/{farm_id}", h.Moisture).Methods(http.MethodPost)
	s.HandleFunc("/npk/{farm_id}", h.NPK).Methods(http.MethodPost)
	s.HandleFunc("/valve/{farm_id}", h.ValveState).Methods(http.MethodGet)
	s.HandleFunc("/valve/{valve_id}", h.ValveCommand).Methods(http.MethodPost)
}
