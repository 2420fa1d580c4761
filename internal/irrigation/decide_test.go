package irrigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

func str(s string) *string { return &s }

func TestDesiredStatus(t *testing.T) {
	snap := func(avg *float64) repo.ValveSnapshot {
		return repo.ValveSnapshot{AutoOnThreshold: 40, AvgMoisture: avg}
	}
	assert.Equal(t, models.StatusOn, DesiredStatus(models.ModeAuto, "", snap(f64(39.9))))
	assert.Equal(t, models.StatusOff, DesiredStatus(models.ModeAuto, "", snap(f64(40))))
	assert.Equal(t, models.StatusOff, DesiredStatus(models.ModeAuto, models.StatusOn, snap(nil)))
	assert.Equal(t, models.StatusOn, DesiredStatus(models.ModeManual, models.StatusOn, snap(f64(99))))
	assert.Equal(t, models.StatusOff, DesiredStatus(models.ModeManual, models.StatusOff, snap(f64(1))))
}

func TestChanged(t *testing.T) {
	none := repo.ValveSnapshot{}
	assert.True(t, Changed(none, models.ModeAuto, models.StatusOff))

	cur := repo.ValveSnapshot{Mode: str("auto"), Status: str("off")}
	assert.False(t, Changed(cur, models.ModeAuto, models.StatusOff))
	assert.True(t, Changed(cur, models.ModeAuto, models.StatusOn))
	assert.True(t, Changed(cur, models.ModeManual, models.StatusOff))

	half := repo.ValveSnapshot{Mode: str("auto")}
	assert.True(t, Changed(half, models.ModeAuto, models.StatusOff))
}

func TestDecideKeepsSnapshotFarm(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := Decide([]repo.ValveSnapshot{
		{FarmID: 7, ValveID: 1, AutoOnThreshold: 40, AvgMoisture: f64(30), Mode: str("auto"), Status: str("off")},
		{FarmID: 7, ValveID: 2, AutoOnThreshold: 40, AvgMoisture: f64(50), Mode: str("auto"), Status: str("off")},
	}, models.ModeAuto, "", 0, at)

	assert.Equal(t, []models.ValveEvent{
		{FarmID: 7, ValveID: 1, Mode: models.ModeAuto, Status: models.StatusOn, Timestamp: at},
	}, out)
}
