package expr

import (
	"errors"
	"strings"
	"testing"

	"loom/pkg/style"
	"loom/pkg/types"
)

type address struct {
	City string
}

type user struct {
	Name    string
	Age     int
	Score   float32
	Home    *address
	Tags    []string
	Enabled bool
}

type aliasTable map[string]Alias

func (a aliasTable) ResolveAlias(name string) (Alias, bool) {
	al, ok := a[name]
	return al, ok
}

type scopeValues map[int]any

func (s scopeValues) Variable(id int) (any, bool) {
	v, ok := s[id]
	return v, ok
}

func testEnv() *Env {
	addr := types.NewStruct[address]("Address")
	types.AddField(addr, "City", types.StringType, func(a *address) string { return a.City }, func(a *address, v string) { a.City = v })

	u := types.NewStruct[user]("User")
	types.AddField(u, "Name", types.StringType, func(x *user) string { return x.Name }, func(x *user, v string) { x.Name = v })
	types.AddField(u, "Age", types.IntType, func(x *user) int { return x.Age }, nil)
	types.AddField(u, "Score", types.FloatType, func(x *user) float32 { return x.Score }, func(x *user, v float32) { x.Score = v })
	types.AddField(u, "Home", addr, func(x *user) *address { return x.Home }, nil)
	types.AddField(u, "Tags", types.ListOf[string](types.StringType), func(x *user) []string { return x.Tags }, nil)
	types.AddField(u, "Enabled", types.BoolType, func(x *user) bool { return x.Enabled }, func(x *user, v bool) { x.Enabled = v })
	types.AddMethod(u, "Add", types.IntType, []*types.Type{types.IntType, types.IntType}, func(_ *user, args []any) any {
		return args[0].(int) + args[1].(int)
	})
	types.AddMethod(u, "Five", types.IntType, []*types.Type{types.IntType, types.IntType, types.IntType, types.IntType, types.IntType}, func(_ *user, args []any) any {
		return 0
	})

	reg := types.NewRegistry()
	reg.RegisterEnum(types.NewEnum("Mode", map[string]any{"On": 1, "Off": 0}))

	return &Env{
		Root:  u,
		Enums: reg,
		Aliases: aliasTable{
			"$limit": {Name: "$limit", Kind: AliasConstant, Type: types.IntType, Value: 10},
			"item":   {Name: "item", Kind: AliasVariable, Type: types.StringType, ID: 3},
		},
	}
}

func testContext() *Context {
	return &Context{
		Root:  &user{Name: "ada", Age: 36, Score: 1.5, Home: &address{City: "london"}, Tags: []string{"a", "b"}},
		Scope: scopeValues{3: "row"},
	}
}

func TestCompileAndEvaluate(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"1 + 2 * 3", 7},
		{"Age + 1", 37},
		{"Age + 0.5", 36.5},
		{"Score + 1", float32(2.5)},
		{"1 + 'x'", "1x"},
		{"Name + '!'", "ada!"},
		{"Age > 30 && !Enabled", true},
		{"Age == 36", true},
		{"Home.City", "london"},
		{"Tags[1]", "b"},
		{"$limit * 2", 20},
		{"item", "row"},
		{"Add(2, 3)", 5},
		{"root.Add(Age, 1)", 37},
		{"-Age", -36},
		{"Age > 100 ? 'old' : 'young'", "young"},
		{"7 % 4", 3},
	}
	c := NewCompiler()
	env := testEnv()
	for _, tt := range tests {
		e, err := c.CompileString(env, tt.src, nil)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.src, err)
			continue
		}
		got, err := Run(testContext(), e)
		if err != nil {
			t.Errorf("%s: unexpected runtime error: %v", tt.src, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %v (%T), got %v (%T)", tt.src, tt.want, tt.want, got, got)
		}
	}
}

func TestOperatorNodeTypes(t *testing.T) {
	c := NewCompiler()
	env := testEnv()

	e, _ := c.CompileString(env, "1 + 'x'", nil)
	if _, ok := e.(*Concat); !ok {
		t.Errorf("expected Concat, got %T", e)
	}
	e, _ = c.CompileString(env, "1 + 2", nil)
	if _, ok := e.(*Arithmetic[int]); !ok {
		t.Errorf("expected Arithmetic[int], got %T", e)
	}
	if !e.IsConstant() {
		t.Error("expected 1 + 2 to be constant")
	}
	e, _ = c.CompileString(env, "true ? 1 : 2", nil)
	if e.Type() != types.IntType {
		t.Errorf("expected int ternary, got %s", e.Type())
	}
	e, _ = c.CompileString(env, "true ? 1 : 'a'", nil)
	if _, ok := e.(*UntypedTernary); !ok || e.Type() != types.ObjectType {
		t.Errorf("expected untyped ternary, got %T %s", e, e.Type())
	}
	e, _ = c.CompileString(env, "Mode.On", nil)
	if e.Type().Kind != types.Enum || !e.IsConstant() {
		t.Errorf("expected constant enum, got %s", e.Type())
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"!Age", "requires a bool operand"},
		{"-Name", "requires a numeric operand"},
		{"Five(1, 2, 3, 4, 5)", "up to 4 arguments"},
		{"Add(1)", "argument count is wrong"},
		{"Missing", "unknown alias"},
		{"Home.Street", "Street is not a field or property on type Address"},
		{"Name.Length", "on primitive type string"},
		{"Age[0]", "cannot be indexed"},
		{"Tags['x']", "cannot convert string to int"},
		{"Age && true", "requires bool operands"},
		{"Mode.Sideways", "has no member Sideways"},
		{"1 +", ""},
	}
	c := NewCompiler()
	env := testEnv()
	for _, tt := range tests {
		_, err := c.CompileString(env, tt.src, nil)
		if err == nil {
			t.Errorf("%s: expected an error", tt.src)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.src, tt.want, err)
		}
	}

	_, err := c.CompileString(env, "$nope", nil)
	if !errors.Is(err, ErrUnknownAlias) {
		t.Errorf("expected ErrUnknownAlias, got %v", err)
	}
}

func TestRequiredTypeCasts(t *testing.T) {
	c := NewCompiler()
	env := testEnv()

	e, err := c.CompileString(env, "Age", types.FloatType)
	if err != nil {
		t.Fatal(err)
	}
	cast, ok := e.(*Cast)
	if !ok || cast.Name != "IntToFloat" {
		t.Fatalf("expected IntToFloat cast, got %T", e)
	}
	if got := e.Eval(testContext()); got != float32(36) {
		t.Errorf("expected 36, got %v", got)
	}

	e, err = c.CompileString(env, "12", types.MeasurementType)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Eval(testContext()); got != style.Px(12) {
		t.Errorf("expected 12px, got %v", got)
	}

	if _, err := c.CompileString(env, "Name", types.IntType); err == nil {
		t.Error("expected string to int to fail")
	}
}

func TestBuiltinNumericCasts(t *testing.T) {
	tests := []struct {
		src      string
		required *types.Type
		name     string
		want     any
	}{
		{"Age", types.FloatType, "IntToFloat", float32(36)},
		{"Age", types.DoubleType, "IntToDouble", float64(36)},
		{"Score", types.IntType, "FloatToInt", 1},
		{"Score", types.DoubleType, "FloatToDouble", float64(1.5)},
		{"Score * 2.5", types.FloatType, "DoubleToFloat", float32(3.75)},
		{"Score * 2.5", types.IntType, "DoubleToInt", 3},
	}
	c := NewCompiler()
	env := testEnv()
	for _, tt := range tests {
		e, err := c.CompileString(env, tt.src, tt.required)
		if err != nil {
			t.Errorf("%s as %s: unexpected error: %v", tt.src, tt.required, err)
			continue
		}
		if cast, ok := e.(*Cast); !ok || cast.Name != tt.name {
			t.Errorf("%s as %s: expected %s cast, got %T", tt.src, tt.required, tt.name, e)
			continue
		}
		if got := e.Eval(testContext()); got != tt.want {
			t.Errorf("%s as %s: expected %v (%T), got %v (%T)", tt.src, tt.required, tt.want, tt.want, got, got)
		}
	}
}

type upperCast struct{}

func (upperCast) CanHandle(required, actual *types.Type) bool {
	return required.Kind == types.String && actual.Kind == types.Int
}

func (upperCast) Cast(e Expression, required *types.Type) Expression {
	return &Cast{Name: "IntToString", inner: e, typ: required, fn: func(v any) any { return ToString(v) }}
}

func TestUserCastHandler(t *testing.T) {
	c := NewCompiler()
	c.AddCastHandler(upperCast{})
	e, err := c.CompileString(testEnv(), "Age", types.StringType)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Eval(testContext()); got != "36" {
		t.Errorf("expected \"36\", got %v", got)
	}
}

func TestRuntimeErrorsAreRecovered(t *testing.T) {
	c := NewCompiler()
	env := testEnv()
	ctx := testContext()
	ctx.Root.(*user).Home = nil

	e, err := c.CompileString(env, "Home.City", nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Run(ctx, e)
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}

	e, _ = c.CompileString(env, "Tags[5]", nil)
	if _, err := Run(ctx, e); err == nil {
		t.Error("expected index out of range error")
	}

	e, _ = c.CompileString(env, "Age", nil)
	if _, err := Run(&Context{}, e); err == nil {
		t.Error("expected nil root to fail")
	}
}

func TestWriteTarget(t *testing.T) {
	c := NewCompiler()
	env := testEnv()
	ctx := testContext()

	w, err := c.CompileWriteTarget(env, "Home.City")
	if err != nil {
		t.Fatal(err)
	}
	w.Assign(ctx, "paris")
	if got := ctx.Root.(*user).Home.City; got != "paris" {
		t.Errorf("expected paris, got %s", got)
	}
	if got := w.Get(ctx); got != "paris" {
		t.Errorf("expected paris, got %v", got)
	}

	w, err = c.CompileWriteTarget(env, "Name")
	if err != nil {
		t.Fatal(err)
	}
	w.Assign(ctx, "grace")
	if got := ctx.Root.(*user).Name; got != "grace" {
		t.Errorf("expected grace, got %s", got)
	}

	for _, src := range []string{"Age", "Age + 1", "Tags[0]", "$limit"} {
		if _, err := c.CompileWriteTarget(env, src); err == nil {
			t.Errorf("%s: expected not assignable", src)
		}
	}
}
