package types

import (
	"errors"
	"testing"
)

type person struct {
	Name string
	Age  int
}

func (p *person) Greeting() string { return "hi " + p.Name }

func personType() *Type {
	t := NewStruct[person]("Person")
	AddField(t, "Name", StringType, func(p *person) string { return p.Name }, func(p *person, v string) { p.Name = v })
	AddField(t, "Age", IntType, func(p *person) int { return p.Age }, nil)
	AddProperty(t, "Greeting", StringType, (*person).Greeting, nil)
	AddMethod(t, "Older", IntType, []*Type{IntType}, func(p *person, args []any) any { return p.Age + args[0].(int) })
	return t
}

func TestFieldAccess(t *testing.T) {
	typ := personType()
	p := &person{Name: "ada", Age: 36}
	name, ok := typ.Field("Name")
	if !ok {
		t.Fatal("expected Name field")
	}
	name.Set(p, "grace")
	if got := name.Get(p); got != "grace" {
		t.Errorf("expected grace, got %v", got)
	}
	age, _ := typ.Field("Age")
	if age.Writable() {
		t.Error("expected Age to be read-only")
	}
	greeting, _ := typ.Field("Greeting")
	if !greeting.Property || greeting.Get(p) != "hi grace" {
		t.Errorf("unexpected property %+v", greeting)
	}
	m, _ := typ.Method("Older")
	if got := m.Call(p, []any{4}); got != 40 {
		t.Errorf("expected 40, got %v", got)
	}
}

func TestNilReceiverPanicsWithAccessError(t *testing.T) {
	typ := personType()
	f, _ := typ.Field("Name")
	defer func() {
		r := recover()
		err, ok := r.(error)
		var ae *AccessError
		if !ok || !errors.As(err, &ae) {
			t.Fatalf("expected AccessError panic, got %v", r)
		}
		if ae.Member != "Name" {
			t.Errorf("expected member Name, got %s", ae.Member)
		}
	}()
	f.Get((*person)(nil))
}

func TestOnPropertyChangedOrder(t *testing.T) {
	typ := personType()
	var calls []string
	typ.OnPropertyChanged(func(obj any, prop string) { calls = append(calls, "first:"+prop) }, "Name", "Age")
	typ.OnPropertyChanged(func(obj any, prop string) { calls = append(calls, "second:"+prop) }, "Name")
	for _, cb := range typ.Callbacks("Name") {
		cb(nil, "Name")
	}
	if len(calls) != 2 || calls[0] != "first:Name" || calls[1] != "second:Name" {
		t.Errorf("unexpected callback order %v", calls)
	}
	if n := len(typ.Callbacks("Age")); n != 1 {
		t.Errorf("expected 1 Age callback, got %d", n)
	}
}

func TestListAndAssignability(t *testing.T) {
	lt := ListOf[string](StringType)
	if lt.Len([]string{"a", "b"}) != 2 || lt.Index([]string{"a", "b"}, 1) != "b" {
		t.Error("unexpected list accessors")
	}
	if lt.Len(nil) != 0 {
		t.Error("expected nil list to be empty")
	}
	if !ListOf[string](StringType).AssignableTo(lt) {
		t.Error("expected structurally equal lists to be assignable")
	}
	if IntType.AssignableTo(FloatType) {
		t.Error("int must need a cast to become float")
	}
	if !NullType.AssignableTo(lt) || NullType.AssignableTo(IntType) {
		t.Error("unexpected null assignability")
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry()
	typ := personType()
	if err := r.RegisterElement("Person", typ, func() any { return &person{} }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.RegisterElement("Person", typ, nil); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	r.Reset()
	if _, ok := r.Element("Person"); ok {
		t.Error("expected registry to be empty after Reset")
	}
}
