package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ID приходит от устройств и фронта то числом, то строкой ("42").
// Ноль означает «не передан».
type ID int64

// UnmarshalJSON: на мусор отдаёт *json.UnmarshalTypeError, decoder сам проставит имя поля.
func (id *ID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*id = 0
		return nil
	}
	kind := "number"
	if strings.HasPrefix(raw, `"`) {
		kind = "string"
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return &json.UnmarshalTypeError{Value: kind, Type: idType}
		}
		raw = s
	} else if raw == "true" || raw == "false" {
		kind = "bool"
	}
	n, err := ParseID(raw)
	if err != nil {
		return &json.UnmarshalTypeError{Value: kind, Type: idType}
	}
	*id = ID(n)
	return nil
}

var idType = reflect.TypeOf(ID(0))

func (id ID) Int64() int64 { return int64(id) }

// ParseID разбирает положительный целочисленный идентификатор.
func ParseID(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return n, nil
}
