package value

import (
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ErrInvalidJSON is returned when input cannot be decoded as a single JSON value.
var ErrInvalidJSON = errors.New("value: invalid JSON")

var (
	compactAPI = jsoniter.Config{EscapeHTML: false}.Froze()
	indentAPI  = jsoniter.Config{EscapeHTML: false, IndentionStep: 2}.Froze()
)

// Parse decodes a JSON document, keeping object keys in source order.
func Parse(data []byte) (Value, error) {
	iter := compactAPI.BorrowIterator(data)
	defer compactAPI.ReturnIterator(iter)

	v := readValue(iter)
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, iter.Error)
	}

	// Only whitespace may follow the value.
	iter.WhatIsNext()
	if !errors.Is(iter.Error, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidJSON)
	}

	return v, nil
}

func readValue(iter *jsoniter.Iterator) Value {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		obj := NewObject()
		iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
			obj.Set(field, readValue(it))
			return it.Error == nil
		})
		return obj

	case jsoniter.ArrayValue:
		arr := Array{}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			arr = append(arr, readValue(it))
			return it.Error == nil
		})
		return arr

	case jsoniter.StringValue:
		return String(iter.ReadString())

	case jsoniter.NumberValue:
		return Number(iter.ReadNumber())

	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())

	case jsoniter.NilValue:
		iter.ReadNil()
		return Null{}
	}

	iter.ReportError("readValue", "unexpected token")
	return nil
}

// Marshal encodes v as compact JSON. Absent values encode as null.
func Marshal(v Value) ([]byte, error) {
	return encode(compactAPI, v)
}

// MarshalIndent encodes v as JSON indented by two spaces.
func MarshalIndent(v Value) ([]byte, error) {
	return encode(indentAPI, v)
}

func encode(api jsoniter.API, v Value) ([]byte, error) {
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)

	writeValue(stream, v)
	if stream.Error != nil {
		return nil, stream.Error
	}

	return append([]byte(nil), stream.Buffer()...), nil
}

func writeValue(stream *jsoniter.Stream, v Value) {
	switch t := v.(type) {
	case *Object:
		if t.Len() == 0 {
			if t == nil {
				stream.WriteNil()
				return
			}
			stream.WriteEmptyObject()
			return
		}
		stream.WriteObjectStart()
		for i, key := range t.keys {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(strings.ToValidUTF8(key, "\uFFFD"))
			writeValue(stream, t.fields[key])
		}
		stream.WriteObjectEnd()

	case Array:
		if len(t) == 0 {
			stream.WriteEmptyArray()
			return
		}
		stream.WriteArrayStart()
		for i, item := range t {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, item)
		}
		stream.WriteArrayEnd()

	case String:
		stream.WriteString(strings.ToValidUTF8(string(t), "\uFFFD"))

	case Number:
		if t == "" {
			stream.WriteRaw("0")
			return
		}
		stream.WriteRaw(string(t))

	case Bool:
		stream.WriteBool(bool(t))

	default:
		stream.WriteNil()
	}
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) { return Marshal(o) }

// MarshalJSON implements json.Marshaler.
func (a Array) MarshalJSON() ([]byte, error) { return Marshal(a) }

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) { return Marshal(n) }

// MarshalJSON implements json.Marshaler.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// UnmarshalJSON implements json.Unmarshaler. The input must be a JSON object.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("%w: expected object", ErrInvalidJSON)
	}
	*o = *obj
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. The input must be a JSON array.
func (a *Array) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	arr, ok := v.(Array)
	if !ok {
		return fmt.Errorf("%w: expected array", ErrInvalidJSON)
	}
	*a = arr
	return nil
}
