package generic

import (
	"fmt"
	"strings"
)

// Type is a runtime type object. Parameterized types are produced by a
// Constructor and are canonical, so two *Type values denote the same type
// exactly when they are the same pointer.
type Type struct {
	Name string
	Args []any
}

// Dynamic is the explicit sentinel for an unconstrained type argument.
var Dynamic = &Type{Name: "dynamic"}

// Builtin types usable as type arguments.
var (
	Int    = &Type{Name: "int"}
	String = &Type{Name: "String"}
	Bool   = &Type{Name: "bool"}
	Double = &Type{Name: "double"}
)

func (t *Type) String() string {
	return formatApplied(t.Name, t.Args)
}

// Constructor returns a memoized generic producing parameterized *Type
// values, e.g. Constructor("Map", 2).MustMake(String, Int) renders as
// Map<String, int>.
func Constructor(name string, arity int) *Generic[*Type] {
	return New(name, arity, func(args ...any) *Type {
		return &Type{Name: name, Args: args}
	})
}

func formatApplied(name string, args []any) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(fmt.Stringer); ok {
			parts[i] = s.String()
		} else {
			parts[i] = fmt.Sprint(a)
		}
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}
