package value

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Value is a JSON-compatible value. The set of implementations is closed:
// *Object, Array, String, Number, Bool and Null. A nil Value means absent.
type Value interface {
	isValue()
}

// Object is an ordered JSON object. The zero value is an empty object ready
// to use.
type Object struct {
	keys   []string
	fields map[string]Value
}

// Array is a JSON array.
type Array []Value

// String is a JSON string.
type String string

// Number is a JSON number, stored as its literal text.
type Number string

// Bool is a JSON boolean.
type Bool bool

// Null is the JSON null literal.
type Null struct{}

func (*Object) isValue() {}
func (Array) isValue()   {}
func (String) isValue()  {}
func (Number) isValue()  {}
func (Bool) isValue()    {}
func (Null) isValue()    {}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present, even when it holds a nil value.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v Value) *Object {
	if o.fields == nil {
		o.fields = make(map[string]Value)
	}
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
	return o
}

// Delete removes key. Deleting a missing key is a no-op.
func (o *Object) Delete(key string) *Object {
	if _, ok := o.fields[key]; !ok {
		return o
	}
	delete(o.fields, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	return o
}

// Range calls fn for each pair in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{
		keys:   slices.Clone(o.keys),
		fields: make(map[string]Value, len(o.fields)),
	}
	for k, v := range o.fields {
		out.fields[k] = Clone(v)
	}
	return out
}

// GetString returns the string stored under key.
func (o *Object) GetString(key string) (string, bool) {
	v, _ := o.Get(key)
	s, ok := v.(String)
	return string(s), ok
}

// GetObject returns the object stored under key.
func (o *Object) GetObject(key string) (*Object, bool) {
	v, _ := o.Get(key)
	obj, ok := v.(*Object)
	return obj, ok && obj != nil
}

// GetArray returns the array stored under key.
func (o *Object) GetArray(key string) (Array, bool) {
	v, _ := o.Get(key)
	arr, ok := v.(Array)
	return arr, ok
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Object:
		return t.Clone()
	case Array:
		if t == nil {
			return Array(nil)
		}
		out := make(Array, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// IsNull reports whether v is absent or the null literal.
func IsNull(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case Null:
		return true
	case *Object:
		return t == nil
	}
	return false
}

// Truthy reports whether v counts as set: true, a non-empty string,
// a non-zero number, or any object or array.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case String:
		return t != ""
	case Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case *Object:
		return t != nil
	case Array:
		return true
	}
	return false
}

// Int returns the Number for n.
func Int(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

// Float returns the Number for f. NaN and infinities have no JSON form and
// are reported as 0.
func Float(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number("0")
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// Int64 parses the number as an integer.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 parses the number as a float.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// IsInteger reports whether the literal has no fraction or exponent.
func (n Number) IsInteger() bool {
	return n != "" && !strings.ContainsAny(string(n), ".eE")
}

// Dig walks v along path. Object steps use keys; array steps use decimal
// indexes.
func Dig(v Value, path ...string) (Value, bool) {
	cur := v
	for _, step := range path {
		switch t := cur.(type) {
		case *Object:
			next, ok := t.Get(step)
			if !ok {
				return nil, false
			}
			cur = next
		case Array:
			i, err := strconv.Atoi(step)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
