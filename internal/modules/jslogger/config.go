package jslogger

import (
	"github.com/GriffinCanCode/webinterop/internal/interop"
)

const (
	// DefaultCategory is the category of a Config created without one.
	DefaultCategory = "JSLoggerInterop"
	// DefaultTemplate places the category, event, timestamp and level in
	// front of the message.
	DefaultTemplate = "{category}{event}{timestamp}{level}: {message}"
)

// Config selects which levels are logged and how messages are laid out.
// A Config is not safe for concurrent mutation; Logger hands out clones.
type Config struct {
	category string
	template string
	minLevel interop.LogLevel
	maxLevel interop.LogLevel
}

// NewConfig creates a configuration. An empty category becomes
// DefaultCategory and a blank template DefaultTemplate; min must not exceed
// max.
func NewConfig(category string, min, max interop.LogLevel, template string) (*Config, error) {
	c := &Config{category: category, template: template}
	if c.category == "" {
		c.category = DefaultCategory
	}
	if interop.RequireNotBlank("template", template) != nil {
		c.template = DefaultTemplate
	}
	if err := c.SetLevel(min, max); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfig logs Information through Critical with the default template.
func DefaultConfig() *Config {
	return &Config{
		category: DefaultCategory,
		template: DefaultTemplate,
		minLevel: interop.LevelInformation,
		maxLevel: interop.LevelCritical,
	}
}

func (c *Config) Category() string           { return c.category }
func (c *Config) Template() string           { return c.template }
func (c *Config) MinLevel() interop.LogLevel { return c.minLevel }
func (c *Config) MaxLevel() interop.LogLevel { return c.maxLevel }

// SetCategory replaces the category. It must not be blank.
func (c *Config) SetCategory(category string) error {
	if err := interop.RequireNotBlank("category", category); err != nil {
		return err
	}
	c.category = category
	return nil
}

// SetTemplate replaces the template. It must not be blank.
func (c *Config) SetTemplate(template string) error {
	if err := interop.RequireNotBlank("template", template); err != nil {
		return err
	}
	c.template = template
	return nil
}

// SetLevel sets the inclusive range of logged levels. The configuration is
// left unchanged when min is greater than max.
func (c *Config) SetLevel(min, max interop.LogLevel) error {
	if min > max {
		return interop.InvalidArgument("minimum log level %s cannot be greater than maximum log level %s", min, max)
	}
	c.minLevel, c.maxLevel = min, max
	return nil
}

// IsEnabled reports whether level is inside the configured range. None is
// never enabled.
func (c *Config) IsEnabled(level interop.LogLevel) bool {
	return level != interop.LevelNone && level >= c.minLevel && level <= c.maxLevel
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// WireValue sends the configuration in its wire shape.
func (c *Config) WireValue() any {
	return WireConfig{
		Category: c.category,
		MinLevel: int(c.minLevel),
		MaxLevel: int(c.maxLevel),
		Template: c.template,
	}
}

// WireConfig is a Config as it travels. Levels are integers.
type WireConfig struct {
	Category string `json:"category"`
	MinLevel int    `json:"minLevel"`
	MaxLevel int    `json:"maxLevel"`
	Template string `json:"template"`
}
