package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// configFileName is looked up in the scan root when --config is not given.
const configFileName = ".rendermap.yaml"

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report yaml keys rather than Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// FileConfig holds the contents of .rendermap.yaml. Empty fields fall back
// to the built-in defaults.
type FileConfig struct {
	Order       string   `yaml:"order" validate:"omitempty,oneof=alpha topo"`
	CyclePolicy string   `yaml:"cycle_policy" validate:"omitempty,oneof=fail alpha break"`
	Format      string   `yaml:"format" validate:"omitempty,oneof=text json tree"`
	Include     []string `yaml:"include" validate:"omitempty,dive,required"`
	Exclude     []string `yaml:"exclude" validate:"omitempty,dive,required"`
	Workers     int      `yaml:"workers" validate:"gte=0"`
	LogLevel    string   `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat   string   `yaml:"log_format" validate:"omitempty,oneof=text json"`
}

// loadConfig reads the config file. With an explicit path the file must
// exist; otherwise <root>/.rendermap.yaml is optional and a missing file
// returns nil (no error).
func loadConfig(explicit, root string) (*FileConfig, string, error) {
	path := explicit
	if path == "" {
		path = filepath.Join(root, configFileName)
	}

	data, err := os.ReadFile(path)
	if explicit == "" && errors.Is(err, os.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return nil, path, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, path, nil
}

// parseConfig decodes and validates a config document. Unknown keys are
// rejected.
func parseConfig(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, formatValidationError(err)
	}
	return &cfg, nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	for _, e := range validationErrs {
		switch e.Tag() {
		case "oneof":
			return fmt.Errorf("%s: must be one of %s, got %q", e.Field(), e.Param(), e.Value())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", e.Field(), e.Param())
		case "required":
			return fmt.Errorf("%s: empty pattern", e.Field())
		default:
			return fmt.Errorf("%s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err
}
