// Package env loads configuration structs from environment variables.
package env

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// fileSuffix names the companion variable holding a path to the value.
const fileSuffix = "_FILE"

// Validator is implemented by config structs that need validation.
type Validator interface {
	Validate() error
}

// LookupFunc resolves an environment variable. It has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ErrInvalidValue is returned when an environment variable value cannot be parsed.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrNotStructPointer is returned when Load is called with a non-pointer or non-struct argument.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return fmt.Sprintf("env.Load: argument must be a pointer to struct, got %s", e.Type)
}

// ErrUnsupportedType is returned when a field has an unsupported type.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Kind)
}

// Load loads configuration from the process environment into the provided struct pointer.
// See LoadFrom for the supported tags and types.
func Load(v any) error {
	return LoadFrom(v, os.LookupEnv)
}

// LoadFrom loads configuration using lookup to resolve variables.
// After parsing, it validates any nested struct that implements Validator, then the root.
//
// Supported struct tags:
//   - env:"VAR_NAME" - maps field to environment variable VAR_NAME
//   - env:"VAR_NAME,file" - as above; when VAR_NAME is unset, VAR_NAME_FILE
//     names a file whose trimmed contents are used instead (mounted secrets)
//
// Supported field types (including named types with these kinds):
//   - string
//   - int, int8, int16, int32, int64
//   - bool
//   - time.Duration (parses Go duration strings like "5s", "1m30s")
//
// Unset variables leave the field untouched, so values placed in the struct
// beforehand act as defaults. An empty but set variable is applied as-is.
func LoadFrom(v any, lookup LookupFunc) error {
	ptrVal := reflect.ValueOf(v)
	if ptrVal.Kind() != reflect.Pointer || ptrVal.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}

	if err := parseStruct(ptrVal.Elem(), lookup); err != nil {
		return err
	}

	if validator, ok := v.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func parseStruct(val reflect.Value, lookup LookupFunc) error {
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		structField := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		// Handle nested structs recursively (skip time.Time which is a struct)
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := parseStruct(field, lookup); err != nil {
				return err
			}

			if field.CanAddr() {
				if validator, ok := field.Addr().Interface().(Validator); ok {
					if err := validator.Validate(); err != nil {
						return err
					}
				}
			}
			continue
		}

		envKey, opts, _ := strings.Cut(structField.Tag.Get("env"), ",")
		if envKey == "" {
			continue
		}

		envVal, exists, err := resolve(envKey, opts == "file", lookup)
		if err != nil {
			return ErrInvalidValue{Field: structField.Name, EnvVar: envKey + fileSuffix, Err: err}
		}
		if !exists {
			continue
		}

		if err := setField(field, envVal); err != nil {
			return ErrInvalidValue{
				Field:  structField.Name,
				EnvVar: envKey,
				Value:  envVal,
				Err:    err,
			}
		}
	}

	return nil
}

// resolve looks up key, falling back to the file named by key_FILE when allowed.
// The variable itself wins over the file.
func resolve(key string, allowFile bool, lookup LookupFunc) (string, bool, error) {
	if v, ok := lookup(key); ok {
		return v, true, nil
	}
	if !allowFile {
		return "", false, nil
	}

	path, ok := lookup(key + fileSuffix)
	if !ok || path == "" {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
		return nil

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}

		i, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(i)
		return nil

	default:
		return ErrUnsupportedType{Kind: field.Kind().String()}
	}
}
