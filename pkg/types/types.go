// Package types is the registration table the expression and binding
// compilers resolve names against. Host code describes each bound Go type
// once (fields, properties, methods, events) with typed accessor functions;
// nothing is discovered through reflection.
package types

import (
	"fmt"
	"sort"
)

type Kind uint8

const (
	Invalid Kind = iota
	Null
	Bool
	Int
	Float
	Double
	String
	Enum
	Color
	Vector2
	Vector3
	Vector4
	Measurement
	FixedLength
	OffsetMeasurement
	Struct
	List
	Object
)

var kindNames = []string{
	"invalid", "null", "bool", "int", "float", "double", "string", "enum", "Color",
	"Vector2", "Vector3", "Vector4", "Measurement", "FixedLength", "OffsetMeasurement",
	"struct", "list", "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Type describes a value type visible to expressions.
type Type struct {
	Name string
	Kind Kind
	// Elem is the element type of a list.
	Elem *Type

	fields     map[string]*Field
	fieldOrder []string
	methods    map[string]*Method
	events     map[string]*Event
	enumValues map[string]any
	callbacks  map[string][]Callback

	length func(list any) int
	index  func(list any, i int) any
}

// Callback observes a property change on obj.
type Callback func(obj any, property string)

// Built-in types. Their Go representations are int, float32, float64, bool,
// string and the style and geom value types.
var (
	VoidType              = &Type{Name: "void", Kind: Invalid}
	NullType              = &Type{Name: "null", Kind: Null}
	BoolType              = &Type{Name: "bool", Kind: Bool}
	IntType               = &Type{Name: "int", Kind: Int}
	FloatType             = &Type{Name: "float", Kind: Float}
	DoubleType            = &Type{Name: "double", Kind: Double}
	StringType            = &Type{Name: "string", Kind: String}
	ColorType             = &Type{Name: "Color", Kind: Color}
	Vector2Type           = &Type{Name: "Vector2", Kind: Vector2}
	Vector3Type           = &Type{Name: "Vector3", Kind: Vector3}
	Vector4Type           = &Type{Name: "Vector4", Kind: Vector4}
	MeasurementType       = &Type{Name: "Measurement", Kind: Measurement}
	FixedLengthType       = &Type{Name: "FixedLength", Kind: FixedLength}
	OffsetMeasurementType = &Type{Name: "OffsetMeasurement", Kind: OffsetMeasurement}
	ObjectType            = &Type{Name: "object", Kind: Object}
)

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind == List && t.Elem != nil {
		return "List<" + t.Elem.String() + ">"
	}
	return t.Name
}

// IsPrimitive reports whether values of t have no members.
func (t *Type) IsPrimitive() bool {
	switch t.Kind {
	case Struct, List, Object:
		return false
	}
	return true
}

func (t *Type) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Float || t.Kind == Double
}

// NumericRank orders numeric types by width: int < float < double.
func (t *Type) NumericRank() int {
	switch t.Kind {
	case Int:
		return 1
	case Float:
		return 2
	case Double:
		return 3
	}
	return 0
}

// AssignableTo reports whether a value of t can be stored in u without a cast.
func (t *Type) AssignableTo(u *Type) bool {
	if t == u || u.Kind == Object {
		return true
	}
	if t.Kind == Null {
		switch u.Kind {
		case Struct, List, String:
			return true
		}
		return false
	}
	if t.Kind == List && u.Kind == List {
		return t.Elem != nil && u.Elem != nil && t.Elem.AssignableTo(u.Elem) && u.Elem.AssignableTo(t.Elem)
	}
	return false
}

func (t *Type) Field(name string) (*Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// Fields returns fields and properties in registration order.
func (t *Type) Fields() []*Field {
	out := make([]*Field, 0, len(t.fieldOrder))
	for _, n := range t.fieldOrder {
		out = append(out, t.fields[n])
	}
	return out
}

func (t *Type) Method(name string) (*Method, bool) {
	m, ok := t.methods[name]
	return m, ok
}

func (t *Type) Event(name string) (*Event, bool) {
	e, ok := t.events[name]
	return e, ok
}

// EnumValue looks up a named enum member.
func (t *Type) EnumValue(name string) (any, bool) {
	v, ok := t.enumValues[name]
	return v, ok
}

// EnumNames returns the enum members sorted by name.
func (t *Type) EnumNames() []string {
	names := make([]string, 0, len(t.enumValues))
	for n := range t.enumValues {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the length of a list value; nil lists are empty.
func (t *Type) Len(list any) int {
	if list == nil || t.length == nil {
		return 0
	}
	return t.length(list)
}

func (t *Type) Index(list any, i int) any {
	return t.index(list, i)
}

// OnPropertyChanged registers fn for each named field or property. The same
// callback may observe several properties; callbacks run in registration
// order after a binding applies a new value.
func (t *Type) OnPropertyChanged(fn Callback, names ...string) *Type {
	if t.callbacks == nil {
		t.callbacks = make(map[string][]Callback)
	}
	for _, n := range names {
		t.callbacks[n] = append(t.callbacks[n], fn)
	}
	return t
}

// Callbacks returns the change callbacks registered for a property.
func (t *Type) Callbacks(name string) []Callback {
	return t.callbacks[name]
}

// Field is a named, typed member with accessor functions. Properties are
// fields backed by getter/setter methods rather than storage.
type Field struct {
	Name     string
	Type     *Type
	Owner    *Type
	Property bool
	Get      func(obj any) any
	// Set is nil for read-only members.
	Set func(obj any, v any)
}

func (f *Field) Writable() bool {
	return f.Set != nil
}

// Method is a callable member. Static methods ignore the receiver.
type Method struct {
	Name   string
	Owner  *Type
	Params []*Type
	Return *Type
	Static bool
	Call   func(recv any, args []any) any
}

// Event is a subscribable member. Subscribe attaches handler to obj.
type Event struct {
	Name      string
	Owner     *Type
	Params    []*Type
	Subscribe func(obj any, handler func(args []any))
}

// AccessError is raised when a member is read through a nil receiver.
type AccessError struct {
	Type   string
	Member string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot access %s.%s on a nil value", e.Type, e.Member)
}
