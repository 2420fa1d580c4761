package irrigation

import (
	"time"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// DesiredStatus: в auto клапан открыт, пока средняя влажность секции ниже
// порога включения. Без показаний влажности клапан закрыт.
// Вне auto статус берётся от вызывающего как есть.
func DesiredStatus(mode models.ValveMode, requested models.ValveStatus, s repo.ValveSnapshot) models.ValveStatus {
	if mode != models.ModeAuto {
		return requested
	}
	if s.AvgMoisture != nil && *s.AvgMoisture < float64(s.AutoOnThreshold) {
		return models.StatusOn
	}
	return models.StatusOff
}

// Changed: клапан без событий считается изменившимся всегда.
func Changed(s repo.ValveSnapshot, mode models.ValveMode, status models.ValveStatus) bool {
	if s.Mode == nil || s.Status == nil {
		return true
	}
	return *s.Mode != string(mode) || *s.Status != string(status)
}

// Decide возвращает события только для клапанов, у которых меняется режим или статус.
func Decide(snaps []repo.ValveSnapshot, mode models.ValveMode, requested models.ValveStatus, timer int, at time.Time) []models.ValveEvent {
	var out []models.ValveEvent
	for _, s := range snaps {
		status := DesiredStatus(mode, requested, s)
		if !Changed(s, mode, status) {
			continue
		}
		out = append(out, models.ValveEvent{
			FarmID:         s.FarmID,
			ValveID:        s.ValveID,
			Mode:           mode,
			Status:         status,
			ManualOffTimer: timer,
			Timestamp:      at,
		})
	}
	return out
}
