package models

// DeviceClass определяет, в какую таблицу телеметрии устройство может писать.
type DeviceClass string

const (
	ClassMoisture DeviceClass = "moisture"
	ClassValve    DeviceClass = "valve"
	ClassNPK      DeviceClass = "npk"
)

type ValveMode string

const (
	ModeAuto   ValveMode = "auto"
	ModeManual ValveMode = "manual"
)

func ParseValveMode(s string) (ValveMode, bool) {
	switch ValveMode(s) {
	case ModeAuto, ModeManual:
		return ValveMode(s), true
	}
	return "", false
}

type ValveStatus string

const (
	StatusOn  ValveStatus = "on"
	StatusOff ValveStatus = "off"
)

func ParseValveStatus(s string) (ValveStatus, bool) {
	switch ValveStatus(s) {
	case StatusOn, StatusOff:
		return ValveStatus(s), true
	}
	return "", false
}
