package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/hostbridge/errors"
)

// Classifier names accepted by Config.Classifier.
const (
	ClassifierConstructorName = "constructor-name"
	ClassifierToStringTag     = "tostring-tag"
	ClassifierChain           = "chain"
)

// Config is the runtime configuration file.
type Config struct {
	// Aliases maps native class names to registered wrapper names.
	Aliases    map[string]string `yaml:"aliases,omitempty" json:"aliases,omitempty" validate:"dive,keys,required,endkeys,required"`
	Classifier string            `yaml:"classifier" json:"classifier" validate:"oneof=constructor-name tostring-tag chain" jsonschema:"enum=constructor-name,enum=tostring-tag,enum=chain,default=constructor-name"`
	Isolates   []IsolateConfig   `yaml:"isolates,omitempty" json:"isolates,omitempty" validate:"unique=Name,dive"`
	Log        LogConfig         `yaml:"log" json:"log"`
	Cache      CacheConfig       `yaml:"cache" json:"cache"`
	// SkipPrelude starts the host heap without its built-in classes.
	SkipPrelude bool `yaml:"skip_prelude,omitempty" json:"skip_prelude,omitempty"`
}

// LogConfig selects the zap configuration.
type LogConfig struct {
	Level       string `yaml:"level" json:"level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Development bool   `yaml:"development" json:"development,omitempty"`
}

// CacheConfig tunes the identity cache side tables.
type CacheConfig struct {
	InitialCapacity int     `yaml:"initial_capacity" json:"initial_capacity" validate:"min=1,max=1024,pow2" jsonschema:"minimum=1,maximum=1024,default=4"`
	LoadFactor      float64 `yaml:"load_factor" json:"load_factor" validate:"gte=0.1,lte=0.95" jsonschema:"minimum=0.1,maximum=0.95,default=0.75"`
}

// IsolateConfig declares a logical isolate. Hash overrides the token hash
// code, which lets a configuration force collisions.
type IsolateConfig struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	Hash uint32 `yaml:"hash" json:"hash,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("pow2", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n > 0 && n&(n-1) == 0
	})
	return v
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Classifier: ClassifierConstructorName,
		Log: LogConfig{
			Level: "info",
		},
		Cache: CacheConfig{
			InitialCapacity: 4,
			LoadFactor:      0.75,
		},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidConfig("read "+path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.InvalidConfig("decode yaml", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.InvalidConfig("validate", err)
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
	}
	return errors.InvalidConfig("invalid fields: "+strings.Join(fields, ", "), err)
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ZapLevel returns the configured level.
func (l LogConfig) ZapLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Build creates a zap logger for this configuration.
func (l LogConfig) Build() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(l.ZapLevel())
	return zc.Build()
}
