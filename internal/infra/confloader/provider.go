package confloader

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: ReadBytes not supported by map provider, use Read() instead")

// mapProvider is a koanf provider over an already nested map.
type mapProvider map[string]any

// ReadBytes is not supported.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map.
func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

// structToMap converts a pointer to a koanf-tagged struct into a nested map,
// so the struct's current values act as the lowest-priority layer.
func structToMap(target any) (map[string]any, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("confloader: target must be a non-nil pointer to a struct, got %T", target)
	}
	return structValueToMap(v.Elem()), nil
}

func structValueToMap(v reflect.Value) map[string]any {
	out := make(map[string]any)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, ok := fieldKey(f)
		if !ok {
			continue
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			out[name] = structValueToMap(fv)
			continue
		}
		if fv.Kind() == reflect.Slice && fv.IsNil() {
			continue
		}
		out[name] = fv.Interface()
	}
	return out
}

// envKeysFor lists the environment names of every leaf key of target.
func envKeysFor(prefix string, target any) map[string]string {
	keys := make(map[string]string)
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return keys
	}
	collectKeys(t, "", func(path string) {
		name := strings.ToUpper(prefix + strings.ReplaceAll(path, ".", "_"))
		keys[name] = path
	})
	return keys
}

func collectKeys(t reflect.Type, parent string, emit func(string)) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, ok := fieldKey(f)
		if !ok {
			continue
		}
		path := name
		if parent != "" {
			path = parent + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, path, emit)
			continue
		}
		emit(path)
	}
}

func fieldKey(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("koanf")
	if tag == "-" {
		return "", false
	}
	if tag == "" {
		return strings.ToLower(f.Name), true
	}
	return tag, true
}
