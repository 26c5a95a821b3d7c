package utils

import (
	"reflect"
	"strconv"
	"strings"

	"gorm.io/gorm/schema"
)

var columnNamer = schema.NamingStrategy{}

// UpdatesFromPtrDTO builds a gorm Updates map from the non-nil pointer fields of a DTO.
// Keys are the column names gorm derives from the field names (PartyID -> party_id);
// a `column` tag overrides that. Fields tagged json:"-" are skipped.
func UpdatesFromPtrDTO(dto any) map[string]any {
	res := make(map[string]any)
	s, ok := structElem(dto)
	if !ok {
		return res
	}
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() || sf.Tag.Get("json") == "-" {
			continue
		}
		name := sf.Tag.Get("column")
		if name == "" {
			name = columnNamer.ColumnName("", sf.Name)
		}
		res[name] = fv.Elem().Interface()
	}
	return res
}

func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
