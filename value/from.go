package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

// ErrUnsupportedType is returned by From for Go values with no JSON form.
var ErrUnsupportedType = errors.New("value: unsupported type")

var stdAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// From converts a Go value into a Value. Maps are converted with sorted keys;
// structs and other types go through their JSON encoding, so json tags and
// json.Marshaler implementations are honored.
func From(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return Clone(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Number(fmt.Sprint(t)), nil
	case uint64:
		return Number(fmt.Sprint(t)), nil
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case json.Number:
		return Number(t), nil
	case []string:
		arr := make(Array, len(t))
		for i, s := range t {
			arr[i] = String(s)
		}
		return arr, nil
	case []any:
		arr := make(Array, len(t))
		for i, item := range t {
			conv, err := From(item)
			if err != nil {
				return nil, err
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		obj := NewObject()
		for _, k := range keys {
			conv, err := From(t[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, conv)
		}
		return obj, nil
	}

	data, err := stdAPI.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %T: %v", ErrUnsupportedType, v, err)
	}
	return Parse(data)
}

// MustFrom is like From but panics on error. It is intended for literals
// and tests.
func MustFrom(v any) Value {
	out, err := From(v)
	if err != nil {
		panic(err)
	}
	return out
}

// MustObject is like MustFrom but also requires the result to be an object.
func MustObject(v any) *Object {
	obj, ok := MustFrom(v).(*Object)
	if !ok {
		panic(fmt.Sprintf("value: %T does not convert to an object", v))
	}
	return obj
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, f)
	}
	return Float(f), nil
}
