package config

import "strings"

// Overrides are command-line values applied on top of the loaded file.
type Overrides struct {
	TypeOutput bool
	Model      string
	Language   string
	Position   string
	Theme      string
}

// Apply returns cfg with non-empty overrides applied and revalidated.
func (o Overrides) Apply(cfg Config) (Config, error) {
	if o.TypeOutput {
		cfg.General.OutputMode = OutputType
	}
	if v := strings.TrimSpace(o.Model); v != "" {
		cfg.Model.Name = v
	}
	if v := strings.TrimSpace(o.Language); v != "" {
		cfg.General.Language = v
	}
	if v := strings.TrimSpace(o.Position); v != "" {
		cfg.UI.Position = v
	}
	if v := strings.TrimSpace(o.Theme); v != "" {
		cfg.UI.Theme = v
	}
	if _, err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
