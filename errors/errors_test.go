package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseBridge,
				Kind:       KindNotFound,
				Path:       []string{"window", "document"},
				GoType:     "*dom.Element",
				NativeType: "HTMLDivElement",
				Detail:     "no factory",
			},
			contains: []string{"[bridge]", "not_found", "window.document", "*dom.Element", "HTMLDivElement", "no factory"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseCache,
				Kind:  KindProtocolViolation,
			},
			contains: []string{"[cache]", "protocol_violation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseFunction,
				Kind:   KindNativeException,
				Detail: "setTimeout threw",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[function]", "native_exception", "setTimeout threw", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseHost,
		Kind:  KindInvalidInput,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := ArityMismatch(PhaseGeneric, "Map", 2, 1)

	if !errors.Is(err, &Error{Phase: PhaseGeneric, Kind: KindArityMismatch}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseFunction, Kind: KindArityMismatch}) {
		t.Error("different phase should not match")
	}
	if !errors.Is(err, ErrArityMismatch) {
		t.Error("phase-less sentinel should match on kind")
	}
	if errors.Is(err, ErrProtocolViolation) {
		t.Error("different kind should not match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseBridge, KindNotFound).
		Path("a", "b").
		GoType("string").
		NativeType("Node").
		Value(42).
		Cause(cause).
		Detail("missing %s", "thing").
		Build()

	if err.Phase != PhaseBridge || err.Kind != KindNotFound {
		t.Fatalf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if strings.Join(err.Path, ".") != "a.b" {
		t.Errorf("path = %v", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("value = %v", err.Value)
	}
	if err.Detail != "missing thing" {
		t.Errorf("detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		kind   Kind
		substr string
	}{
		{"protocol", ProtocolViolation(PhaseCache, "duplicate"), KindProtocolViolation, "duplicate"},
		{"arity", ArityMismatch(PhaseGeneric, "Pair", 2, 3), KindArityMismatch, "expected 2 argument(s), got 3"},
		{"arity range", ArityRange(PhaseFunction, "cb", 1, 2, 0), KindArityMismatch, "expected 1..2"},
		{"undefined", UndefinedTypeArgument("Map", 1), KindUndefinedTypeArgument, "type argument 1"},
		{"circular", CircularInitialization("core.version"), KindCircularInitialization, `"core.version"`},
		{"native", NativeException(PhaseFunction, "setTimeout", "x", errors.New("e")), KindNativeException, "setTimeout"},
		{"unsupported", Unsupported(PhaseMixin, "initializer params"), KindUnsupported, "initializer params"},
		{"not found", NotFound(PhaseLazy, "binding", "x"), KindNotFound, `binding "x" not found`},
		{"invalid input", InvalidInput(PhaseHost, "bad"), KindInvalidInput, "bad"},
		{"nil", NilPointer(PhaseBridge, "runtime"), KindNilPointer, "runtime is nil"},
		{"comparable", NotComparable(PhaseGeneric, []string{"List"}, "[]int"), KindNotComparable, "[]int"},
		{"registration", Registration("Node", "duplicate"), KindRegistration, "Node"},
		{"config", InvalidConfig("parse", errors.New("yaml")), KindInvalidConfig, "yaml"},
		{"wrap", Wrap(PhaseHost, KindInvalidInput, errors.New("inner"), "outer"), KindInvalidInput, "inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.substr) {
				t.Errorf("%q does not contain %q", tt.err.Error(), tt.substr)
			}
		})
	}
}

func TestNativeException_CarriesWrappedValue(t *testing.T) {
	wrapped := struct{ name string }{"DOMException"}
	err := NativeException(PhaseBridge, "appendChild", wrapped, errors.New("raw"))

	var target *Error
	if !errors.As(err, &target) {
		t.Fatal("errors.As failed")
	}
	if target.Value != wrapped {
		t.Errorf("value = %v", target.Value)
	}
	if !errors.Is(err, ErrNativeException) {
		t.Error("sentinel mismatch")
	}
}
