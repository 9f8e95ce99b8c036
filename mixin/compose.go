package mixin

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/generic"
)

// Composer synthesizes composed classes, once per distinct (base, mixins)
// combination.
type Composer struct {
	byArity map[int]*generic.Generic[*Class]
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewComposer creates an empty composer.
func NewComposer() *Composer {
	return &Composer{
		byArity: make(map[int]*generic.Generic[*Class]),
		logger:  Logger(),
	}
}

var defaultComposer = NewComposer()

// Compose applies mixins to base using the package-level composer.
func Compose(base *Class, mixins ...*Class) (*Class, error) {
	return defaultComposer.Compose(base, mixins...)
}

// Compose returns the class "base with mixins...". The result extends base
// and carries each mixin's own methods, copied in listed order so later
// mixins override earlier ones and the base. Its initializer runs the
// mixin initializers in reverse listed order with no arguments, then the
// base initializer with the constructor arguments.
//
// With no mixins base itself is returned.
func (c *Composer) Compose(base *Class, mixins ...*Class) (*Class, error) {
	if base == nil {
		return nil, errors.NilPointer(errors.PhaseMixin, "base class")
	}
	if len(mixins) == 0 {
		return base, nil
	}
	for i, m := range mixins {
		if m == nil {
			return nil, errors.New(errors.PhaseMixin, errors.KindNilPointer).
				Path(base.Name).
				Detail("mixin %d is nil", i).
				Build()
		}
		if m.InitParams > 0 {
			return nil, errors.New(errors.PhaseMixin, errors.KindUnsupported).
				Path(base.Name, m.Name).
				Detail("mixin initializer takes %d argument(s); mixin initializers take none", m.InitParams).
				Build()
		}
	}

	args := make([]any, 0, len(mixins)+1)
	args = append(args, base)
	for _, m := range mixins {
		args = append(args, m)
	}

	inst, err := c.forArity(len(args)).Make(args...)
	if err != nil {
		return nil, err
	}
	return inst.Value, nil
}

func (c *Composer) forArity(arity int) *generic.Generic[*Class] {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.byArity[arity]
	if !ok {
		g = generic.New("mixin", arity, c.synthesize)
		c.byArity[arity] = g
	}
	return g
}

// synthesize builds the composed class; args are base followed by mixins.
func (c *Composer) synthesize(args ...any) *Class {
	base := args[0].(*Class)
	mixins := make([]*Class, len(args)-1)
	names := make([]string, len(mixins))
	for i, a := range args[1:] {
		mixins[i] = a.(*Class)
		names[i] = mixins[i].Name
	}

	composed := &Class{
		Name:       base.Name + " with " + strings.Join(names, ", "),
		Super:      base,
		Methods:    make(map[string]Method),
		InitParams: base.InitParams,
		mixins:     mixins,
		provenance: make(map[string]*Class),
	}

	for _, m := range mixins {
		for name, fn := range m.Methods {
			composed.Methods[name] = fn
			composed.provenance[name] = m
		}
	}

	composed.Init = func(self *Instance, args ...any) error {
		for i := len(mixins) - 1; i >= 0; i-- {
			if init := mixins[i].Init; init != nil {
				if err := init(self); err != nil {
					return err
				}
			}
		}
		return base.Initialize(self, args...)
	}

	if ce := c.logger.Check(zap.DebugLevel, "mixin composed"); ce != nil {
		ce.Write(zap.String("class", composed.Name), zap.Int("methods", len(composed.Methods)))
	}
	return composed
}
