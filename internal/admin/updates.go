package admin

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// parseFarmerUpdate переводит update_key/update_val в типизированное изменение.
// Ключ вне списка → 400, до хранилища не доходит.
func parseFarmerUpdate(key string, raw json.RawMessage, hash func(string) (string, error)) (repo.FarmerUpdate, error) {
	switch key {
	case "farmer_fname", "farmer_lname", "farmer_phone", "farmer_email", "farmer_password":
	default:
		return nil, models.Invalid("update_key", "invalid update key")
	}
	s, err := stringVal(raw)
	if err != nil {
		return nil, err
	}
	switch key {
	case "farmer_fname":
		return repo.FarmerFirstName(s), nil
	case "farmer_lname":
		return repo.FarmerLastName(s), nil
	case "farmer_phone":
		return repo.FarmerPhone(s), nil
	case "farmer_email":
		return repo.FarmerEmail(s), nil
	default:
		h, err := hash(s)
		if err != nil {
			return nil, err
		}
		return repo.FarmerPasswordHash(h), nil
	}
}

func parseFarmUpdate(key string, raw json.RawMessage) (repo.FarmUpdate, error) {
	switch key {
	case "farm_name", "farm_key":
		s, err := stringVal(raw)
		if err != nil {
			return nil, err
		}
		if key == "farm_key" {
			return repo.FarmKeyValue(s), nil
		}
		return repo.FarmNameValue(s), nil
	case "farm_location_cordinates":
		t := strings.TrimSpace(string(raw))
		if !strings.HasPrefix(t, "[") && !strings.HasPrefix(t, "{") {
			return nil, models.Invalid("update_val", "must be a JSON array or object")
		}
		return repo.FarmLocationValue(datatypes.JSON(t)), nil
	case "farm_size":
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil || f < 0 {
			return nil, models.Invalid("update_val", "must be a non-negative number")
		}
		return repo.FarmSizeValue(f), nil
	case "auto_on_threshold", "auto_off_threshold":
		var n int
		if err := json.Unmarshal(raw, &n); err != nil || n < 0 || n > 100 {
			return nil, models.Invalid("update_val", "must be an integer in 0..100")
		}
		if key == "auto_on_threshold" {
			return repo.AutoOnThreshold(n), nil
		}
		return repo.AutoOffThreshold(n), nil
	}
	return nil, models.Invalid("update_key", "invalid update key")
}

func stringVal(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", models.Invalid("update_val", "must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", models.Invalid("update_val", "required")
	}
	return s, nil
}
