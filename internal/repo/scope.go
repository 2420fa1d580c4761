package repo

import "strings"

type scopeKind int

const (
	scopeDevice scopeKind = iota + 1
	scopeFarmer
	scopeSystem
)

// Scope описывает, от чьего имени идёт обращение к клапанам фермы.
// Строится только через конструкторы, нулевое значение ничего не разрешает.
type Scope struct {
	kind     scopeKind
	farmID   int64
	farmerID int64
	farmKey  string
}

// DeviceScope: устройство предъявляет общий ключ фермы.
func DeviceScope(farmID int64, farmKey string) Scope {
	return Scope{kind: scopeDevice, farmID: farmID, farmKey: farmKey}
}

// FarmerScope: фермер-владелец. farmID == 0 означает любую его ферму.
func FarmerScope(farmerID, farmID int64) Scope {
	return Scope{kind: scopeFarmer, farmerID: farmerID, farmID: farmID}
}

// SystemScope: планировщик, без проверки владельца.
func SystemScope(farmID int64) Scope {
	return Scope{kind: scopeSystem, farmID: farmID}
}

func (s Scope) FarmID() int64 { return s.farmID }

// where отдаёт условие над представлениями farm_with_* / lst_* и его аргументы.
func (s Scope) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	switch s.kind {
	case scopeDevice:
		conds = append(conds, "farm_id = ?", "farm_key = ?")
		args = append(args, s.farmID, s.farmKey)
	case scopeFarmer:
		conds = append(conds, "farmer_id = ?")
		args = append(args, s.farmerID)
		if s.farmID != 0 {
			conds = append(conds, "farm_id = ?")
			args = append(args, s.farmID)
		}
	case scopeSystem:
		conds = append(conds, "farm_id = ?")
		args = append(args, s.farmID)
	default:
		return "FALSE", nil
	}
	return strings.Join(conds, " AND "), args
}
