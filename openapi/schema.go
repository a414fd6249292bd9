package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/oasdocs/value"
)

// Exampler can be implemented by types to provide an example value for the
// generated schema.
//
//	func (u User) OpenAPIExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
type Exampler interface {
	OpenAPIExample() any
}

var timeType = reflect.TypeOf(time.Time{})

// Reflector derives JSON Schemas from Go types. Named struct types are
// registered once in the registry and referenced as {"$ref": "Name#"}.
// Pointer types allow null through a type list, which Assemble later turns
// into anyOf.
type Reflector struct {
	reg   *Registry
	names map[reflect.Type]string
	taken map[string]reflect.Type
}

// NewReflector creates a reflector registering named types in reg, which
// must not be nil.
func NewReflector(reg *Registry) *Reflector {
	return &Reflector{
		reg:   reg,
		names: make(map[reflect.Type]string),
		taken: make(map[string]reflect.Type),
	}
}

// Schema returns the schema for the type of v, or nil for a nil v.
func (r *Reflector) Schema(v any) value.Value {
	if v == nil {
		return nil
	}
	return r.typeSchema(reflect.TypeOf(v))
}

func (r *Reflector) typeSchema(t reflect.Type) value.Value {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct && t != timeType {
		if name := r.register(t); name != "" {
			ref := value.NewObject().Set("$ref", value.String(name+"#"))
			if nullable {
				return value.NewObject().Set("anyOf", value.Array{
					ref,
					value.NewObject().Set("type", value.String("null")),
				})
			}
			return ref
		}
	}

	schema := r.inlineSchema(t)
	if schema == nil {
		return nil
	}
	if typ, ok := schema.GetString("type"); ok && nullable {
		schema.Set("type", value.Array{value.String(typ), value.String("null")})
	}
	return schema
}

// register stores the schema of a named struct type and returns its
// registry name. Anonymous and unnamed types return "".
func (r *Reflector) register(t reflect.Type) string {
	if name, ok := r.names[t]; ok {
		return name
	}

	name := r.typeName(t)
	if name == "" {
		return ""
	}

	// The entry is stored before its properties are filled in, so
	// recursive types resolve to it.
	schema := value.NewObject().Set("$id", value.String(name+"#"))
	if err := r.reg.Set(name+"#", schema); err != nil {
		return ""
	}
	r.names[t] = name
	r.taken[name] = t

	r.structSchema(t).Range(func(key string, v value.Value) bool {
		schema.Set(key, v)
		return true
	})

	if ex, ok := reflect.New(t).Interface().(Exampler); ok {
		if example, err := value.From(ex.OpenAPIExample()); err == nil {
			schema.Set("example", example)
		}
	}

	return name
}

// typeName picks a registry name for t. A clash with another type or with a
// schema registered by hand is resolved with the package name as prefix,
// then with a numeric suffix.
func (r *Reflector) typeName(t reflect.Type) string {
	base := sanitizeTypeName(t.Name())
	if base == "" || t.PkgPath() == "" {
		return ""
	}

	candidates := []string{base, pkgPrefix(t.PkgPath()) + base}
	for _, name := range candidates {
		if r.available(name, t) {
			return name
		}
	}

	prefixed := candidates[1]
	for i := 2; ; i++ {
		name := prefixed + strconv.Itoa(i)
		if r.available(name, t) {
			return name
		}
	}
}

func (r *Reflector) available(name string, t reflect.Type) bool {
	if owner, ok := r.taken[name]; ok {
		return owner == t
	}
	_, exists := r.reg.Lookup(name)
	return !exists
}

func (r *Reflector) inlineSchema(t reflect.Type) *value.Object {
	typed := func(name string) *value.Object {
		return value.NewObject().Set("type", value.String(name))
	}

	if t == timeType {
		return typed("string").Set("format", value.String("date-time"))
	}

	switch t.Kind() {
	case reflect.Bool:
		return typed("boolean")

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return typed("integer")

	case reflect.Float32, reflect.Float64:
		return typed("number")

	case reflect.String:
		return typed("string")

	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return typed("string").Set("format", value.String("byte"))
		}
		schema := typed("array")
		if items := r.typeSchema(t.Elem()); items != nil {
			schema.Set("items", items)
		}
		return schema

	case reflect.Map:
		schema := typed("object")
		if t.Key().Kind() == reflect.String {
			if elem := r.typeSchema(t.Elem()); elem != nil {
				schema.Set("additionalProperties", elem)
			}
		}
		return schema

	case reflect.Struct:
		return r.structSchema(t)

	case reflect.Interface:
		return value.NewObject()
	}

	return nil
}

func (r *Reflector) structSchema(t reflect.Type) *value.Object {
	props := value.NewObject()
	var required value.Array

	r.collectFields(t, props, &required, false)

	schema := value.NewObject().Set("type", value.String("object"))
	if props.Len() > 0 {
		schema.Set("properties", props)
	}
	if len(required) > 0 {
		schema.Set("required", required)
	}
	return schema
}

// collectFields walks exported fields the way encoding/json does. Fields of
// pointer-embedded structs are never required since the pointer may be nil.
func (r *Reflector) collectFields(t reflect.Type, props *value.Object, required *value.Array, optional bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() && !field.Anonymous {
			continue
		}

		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts := parseJSONTag(tag)

		if field.Anonymous && name == "" {
			ft := field.Type
			isPtr := ft.Kind() == reflect.Pointer
			if isPtr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				r.collectFields(ft, props, required, optional || isPtr)
				continue
			}
		}

		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}

		fieldSchema := r.typeSchema(field.Type)
		if fieldSchema == nil {
			continue
		}

		if obj, ok := fieldSchema.(*value.Object); ok {
			if opts.stringEncode && !obj.Has("$ref") && !obj.Has("anyOf") {
				obj.Set("type", value.String("string"))
			}
			applyOpenAPITag(obj, field.Tag.Get("openapi"))
		}

		props.Set(name, fieldSchema)
		if !opts.omitempty && !optional {
			*required = append(*required, value.String(name))
		}
	}
}

type jsonTagOpts struct {
	omitempty    bool
	stringEncode bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, jsonTagOpts{
		omitempty:    strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero"),
		stringEncode: strings.Contains(rest, "string"),
	}
}

// applyOpenAPITag applies the `openapi:"key=value,..."` struct tag.
func applyOpenAPITag(schema *value.Object, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, raw, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)

		switch key {
		case "description", "format", "pattern", "title":
			schema.Set(key, value.String(raw))
		case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf":
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				schema.Set(key, value.Float(f))
			}
		case "minLength", "maxLength", "minItems", "maxItems":
			if n, err := strconv.Atoi(raw); err == nil {
				schema.Set(key, value.Int(int64(n)))
			}
		case "enum":
			var enum value.Array
			for item := range strings.SplitSeq(raw, "|") {
				enum = append(enum, tagScalar(schema, item))
			}
			schema.Set("enum", enum)
		case "example", "default":
			schema.Set(key, tagScalar(schema, raw))
		case "deprecated", "readOnly", "writeOnly", "uniqueItems":
			schema.Set(key, value.Bool(true))
		}
	}
}

// tagScalar converts a tag value according to the schema type.
func tagScalar(schema *value.Object, raw string) value.Value {
	typ, _ := schema.GetString("type")
	if types, ok := schema.GetArray("type"); ok && len(types) > 0 {
		if s, ok := types[0].(value.String); ok {
			typ = string(s)
		}
	}

	switch typ {
	case "integer":
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return value.Int(n)
		}
	case "number":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return value.Float(f)
		}
	case "boolean":
		if b, err := strconv.ParseBool(raw); err == nil {
			return value.Bool(b)
		}
	}
	return value.String(raw)
}

// pkgPrefix capitalizes the last segment of a package path, "net/http"
// giving "Http".
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if pkgPath == "" {
		return ""
	}
	pkgPath = strings.NewReplacer("-", "_", ".", "_").Replace(pkgPath)
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}

// sanitizeTypeName flattens generic names: "Page[pkg.User]" becomes
// "PageUser" and "Page[[]pkg.User]" becomes "PageUserList".
func sanitizeTypeName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")
	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	if isList {
		return base + inner + "List"
	}
	return base + inner
}
