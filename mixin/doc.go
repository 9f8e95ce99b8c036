// Package mixin composes classes from a base class and ordered capability
// mixins.
//
// A composed class extends the base and owns a copy of each mixin's own
// methods. It is built once per (base, mixins...) combination and records
// which mixin supplied every method:
//
//	Widget, _ := mixin.Compose(Base, Draggable, Resizable)
//	w, _ := mixin.New(Widget, "w1")
//	w.Call("drag", 10, 20)
//	src, _ := Widget.Provenance("drag")  // Draggable
//
// Construction runs Resizable's initializer, then Draggable's, then Base's
// with the constructor arguments. Mixin initializers take no arguments.
package mixin
