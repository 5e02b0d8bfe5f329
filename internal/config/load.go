package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a config document encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported config extension %q (want .toml, .yaml or .json)", filepath.Ext(path))
}

// Load reads, parses and validates the config at path
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &Error{Path: path, Op: OpRead, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		tag := ftag.Internal
		if os.IsNotExist(err) {
			tag = ftag.NotFound
		}
		return nil, &Error{
			Path: path,
			Op:   OpRead,
			Err:  fault.Wrap(err, fmsg.With("cannot read config file"), ftag.With(tag)),
		}
	}

	cfg, err := Parse(data, format)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a config document, applies defaults for missing fields and
// validates the result. Unknown fields are ignored.
func Parse(data []byte, format Format) (*Config, error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, &Error{Op: OpParse, Err: err}
	}

	// All formats are funnelled through the JSON tags so the schema is
	// defined once.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &Error{Op: OpParse, Err: err}
	}

	cfg := Default()
	cfg.Modes = nil
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, &Error{Op: OpParse, Err: err}
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = Default().Modes
	}

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Op: OpValidate, Err: err}
	}
	return cfg, nil
}

func decode(data []byte, format Format) (map[string]any, error) {
	doc := map[string]any{}
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return doc, nil
}

// Save writes the config to path in the format named by its extension
func (c *Config) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := c.Marshal(format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("cannot create config directory"))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.With("cannot write config file"))
	}
	return nil
}

// Marshal encodes the config in the given format
func (c *Config) Marshal(format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(c, "", "  ")
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	normalized := normalize(doc)

	switch format {
	case FormatTOML:
		return toml.Marshal(normalized)
	case FormatYAML:
		return yaml.Marshal(normalized)
	}
	return nil, fmt.Errorf("unsupported config format %q", format)
}

// normalize turns json.Number leaves into int64 or float64 so the TOML and
// YAML encoders write plain numbers.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	}
	return v
}
