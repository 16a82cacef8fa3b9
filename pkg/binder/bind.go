package binder

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// bindValues copies url.Values into tagged struct fields. The tag names the
// source key; "-" skips the field; anything after a comma is ignored so
// `query:"page,omitempty"` reads like the json tag convention.
func bindValues(v any, tag string, values url.Values, wrapErr error) error {
	target, err := structValue(v)
	if err != nil {
		return err
	}

	t := target.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		name, ok := tagName(field, tag)
		if !ok {
			continue
		}
		raw, present := values[name]
		if !present || len(raw) == 0 {
			continue
		}
		if err := setField(target.Field(i), raw); err != nil {
			return errors.Join(wrapErr, fmt.Errorf("field %q: %w", name, err))
		}
	}
	return nil
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, ErrTargetMustBePointer
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrTargetMustBePointer
	}
	return rv, nil
}

func tagName(field reflect.StructField, tag string) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	value, ok := field.Tag.Lookup(tag)
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(value, ",")
	if name == "" || name == "-" {
		return "", false
	}
	return name, true
}

// setField assigns raw values to a struct field, converting to the field's
// type. Slices take every value; scalars take the first.
func setField(field reflect.Value, raw []string) error {
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return setField(field.Elem(), raw)
	}

	if field.Kind() == reflect.Slice {
		slice := reflect.MakeSlice(field.Type(), len(raw), len(raw))
		for i, item := range raw {
			if err := setScalar(slice.Index(i), item); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	}

	return setScalar(field, raw[0])
}

func setScalar(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
