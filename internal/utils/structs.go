package utils

import (
	"fmt"
	"reflect"
)

// ColumnTag names the struct tag that maps a field to a table column.
const ColumnTag = "db"

type column struct {
	name  string
	index int
}

// columnsOf lists the exported fields of a struct that carry a column tag,
// in declaration order. A tag of "-" skips the field.
func columnsOf(v reflect.Value) []column {
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("utils: expected a struct or pointer to struct, got %s", v.Kind()))
	}

	t := v.Type()
	out := make([]column, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Tag.Get(ColumnTag)
		if name == "" || name == "-" {
			continue
		}

		out = append(out, column{name: name, index: i})
	}

	return out
}

// StructTagValues returns the column names of input in field order.
func StructTagValues(input any) []string {
	cols := columnsOf(reflect.ValueOf(input))

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}

	return names
}

// StructToMap maps each column name of input to its field value.
func StructToMap(input any) map[string]any {
	v := reflect.ValueOf(input)
	cols := columnsOf(v)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c.name] = v.Field(c.index).Interface()
	}

	return out
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil || msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
