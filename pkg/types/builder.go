package types

// NewStruct declares a struct type whose values are *T.
func NewStruct[T any](name string) *Type {
	return &Type{
		Name:    name,
		Kind:    Struct,
		fields:  make(map[string]*Field),
		methods: make(map[string]*Method),
		events:  make(map[string]*Event),
	}
}

func receiver[T any](t *Type, member string, obj any) *T {
	o, _ := obj.(*T)
	if o == nil {
		panic(&AccessError{Type: t.Name, Member: member})
	}
	return o
}

func addField(t *Type, f *Field) *Field {
	if _, ok := t.fields[f.Name]; !ok {
		t.fieldOrder = append(t.fieldOrder, f.Name)
	}
	f.Owner = t
	t.fields[f.Name] = f
	return f
}

// AddField registers a stored field. set may be nil for read-only fields.
func AddField[T, V any](t *Type, name string, vt *Type, get func(*T) V, set func(*T, V)) *Field {
	f := &Field{Name: name, Type: vt}
	f.Get = func(obj any) any { return get(receiver[T](t, name, obj)) }
	if set != nil {
		f.Set = func(obj any, v any) { set(receiver[T](t, name, obj), valueAs[V](v)) }
	}
	return addField(t, f)
}

// AddProperty registers a computed property backed by getter/setter methods.
func AddProperty[T, V any](t *Type, name string, vt *Type, get func(*T) V, set func(*T, V)) *Field {
	f := AddField(t, name, vt, get, set)
	f.Property = true
	return f
}

// AddMethod registers an instance method called with the receiver.
// A nil ret declares a method without a result.
func AddMethod[T any](t *Type, name string, ret *Type, params []*Type, fn func(recv *T, args []any) any) *Method {
	if ret == nil {
		ret = VoidType
	}
	m := &Method{Name: name, Owner: t, Params: params, Return: ret}
	m.Call = func(recv any, args []any) any { return fn(receiver[T](t, name, recv), args) }
	t.methods[name] = m
	return m
}

// AddStaticMethod registers a method that needs no receiver.
func AddStaticMethod(t *Type, name string, ret *Type, params []*Type, fn func(args []any) any) *Method {
	if ret == nil {
		ret = VoidType
	}
	m := &Method{Name: name, Owner: t, Params: params, Return: ret, Static: true}
	m.Call = func(_ any, args []any) any { return fn(args) }
	t.methods[name] = m
	return m
}

// AddEvent registers an event. subscribe must arrange for handler to run
// whenever the event fires on the given value.
func AddEvent[T any](t *Type, name string, params []*Type, subscribe func(obj *T, handler func(args []any))) *Event {
	e := &Event{Name: name, Owner: t, Params: params}
	e.Subscribe = func(obj any, handler func(args []any)) { subscribe(receiver[T](t, name, obj), handler) }
	t.events[name] = e
	return e
}

// ListOf declares a list type whose values are []E.
func ListOf[E any](elem *Type) *Type {
	return &Type{
		Name:   "List<" + elem.Name + ">",
		Kind:   List,
		Elem:   elem,
		length: func(list any) int {
			l, _ := list.([]E)
			return len(l)
		},
		index: func(list any, i int) any { return list.([]E)[i] },
	}
}

// NewEnum declares an enum type from its named members.
func NewEnum(name string, values map[string]any) *Type {
	t := &Type{Name: name, Kind: Enum, enumValues: make(map[string]any, len(values))}
	for k, v := range values {
		t.enumValues[k] = v
	}
	return t
}

// valueAs converts v to V, mapping nil to the zero value.
func valueAs[V any](v any) V {
	if v == nil {
		var zero V
		return zero
	}
	return v.(V)
}
