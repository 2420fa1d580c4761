package repo

import "gorm.io/datatypes"

// Изменяемые поля задаются закрытым набором типов: колонка зашита в метод
// варианта, имя колонки из запроса в SQL не попадает никогда.

// FarmerUpdate: одно изменяемое поле фермера.
type FarmerUpdate interface {
	farmerColumn() string
	value() any
}

type (
	FarmerFirstName    string
	FarmerLastName     string
	FarmerPhone        string
	FarmerEmail        string
	FarmerPasswordHash string
)

func (FarmerFirstName) farmerColumn() string    { return "farmer_fname" }
func (FarmerLastName) farmerColumn() string     { return "farmer_lname" }
func (FarmerPhone) farmerColumn() string        { return "farmer_phone" }
func (FarmerEmail) farmerColumn() string        { return "farmer_email" }
func (FarmerPasswordHash) farmerColumn() string { return "farmer_password" }

func (v FarmerFirstName) value() any    { return string(v) }
func (v FarmerLastName) value() any     { return string(v) }
func (v FarmerPhone) value() any        { return string(v) }
func (v FarmerEmail) value() any        { return string(v) }
func (v FarmerPasswordHash) value() any { return string(v) }

// FarmUpdate: одно изменяемое поле фермы.
type FarmUpdate interface {
	farmColumn() string
	value() any
}

type (
	FarmNameValue     string
	FarmLocationValue datatypes.JSON
	FarmSizeValue     float64
	AutoOnThreshold   int
	AutoOffThreshold  int
	FarmKeyValue      string
)

func (FarmNameValue) farmColumn() string     { return "farm_name" }
func (FarmLocationValue) farmColumn() string { return "farm_location_cordinates" }
func (FarmSizeValue) farmColumn() string     { return "farm_size" }
func (AutoOnThreshold) farmColumn() string   { return "auto_on_threshold" }
func (AutoOffThreshold) farmColumn() string  { return "auto_off_threshold" }
func (FarmKeyValue) farmColumn() string      { return "farm_key" }

func (v FarmNameValue) value() any     { return string(v) }
func (v FarmLocationValue) value() any { return datatypes.JSON(v) }
func (v FarmSizeValue) value() any     { return float64(v) }
func (v AutoOnThreshold) value() any   { return int(v) }
func (v AutoOffThreshold) value() any  { return int(v) }
func (v FarmKeyValue) value() any      { return string(v) }
