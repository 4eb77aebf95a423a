package utils

import (
	"reflect"
)

var ColumnTag = "db"

// columns calls fn for every exported field carrying a ColumnTag, in
// declaration order.
func columns(input any, fn func(tag string, v reflect.Value)) {
	value := reflect.ValueOf(input)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	typ := value.Type()
	for i := 0; i < value.NumField(); i++ {
		if typ.Field(i).PkgPath != "" {
			continue
		}

		tag := typ.Field(i).Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}

		fn(tag, value.Field(i))
	}
}

func StructTagValues(input any) []string {
	var result []string
	columns(input, func(tag string, _ reflect.Value) {
		result = append(result, tag)
	})
	return result
}

func StructToMap(input any) map[string]any {
	result := make(map[string]any)
	columns(input, func(tag string, v reflect.Value) {
		result[tag] = v.Interface()
	})
	return result
}
