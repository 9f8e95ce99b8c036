// Package generic canonicalizes parameterized types.
//
// A Generic wraps a constructor of fixed arity. Make walks a chain of
// nodes, one per ordered argument, and builds the result only the first
// time a given argument sequence is seen:
//
//	list := generic.Constructor("List", 1)
//	a := list.MustMake(generic.Int)
//	b := list.MustMake(generic.Int)   // a == b
//
// Code downstream compares instantiations by pointer, so Make never returns
// two different values for the same arguments. Missing arguments are an
// error rather than a key: use Dynamic for "any type".
package generic
