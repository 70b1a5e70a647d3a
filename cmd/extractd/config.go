package main

import (
	"fmt"

	"github.com/kbukum/extractd/config"
	"github.com/kbukum/extractd/extract/extractors"
	"github.com/kbukum/extractd/observability"
	"github.com/kbukum/extractd/server"
	"github.com/kbukum/extractd/validation"
	"github.com/kbukum/extractd/version"
)

// AppConfig is the full extractd configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Extract       ExtractConfig        `yaml:"extract" mapstructure:"extract"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ExtractConfig configures the coordinator and the sample extractors.
type ExtractConfig struct {
	// MaxRows caps the batch size of a run. Zero means unlimited.
	MaxRows int `yaml:"max_rows" mapstructure:"max_rows" validate:"gte=0"`

	extractors.Config `yaml:",inline" mapstructure:",squash"`
}

func (c *ExtractConfig) ApplyDefaults() {
	c.Config.ApplyDefaults()
}

func (c *ExtractConfig) Validate() error {
	return validation.Validate(c)
}

func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Extract.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Extract.Validate(); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}

func (c *AppConfig) serviceInfo() observability.ServiceInfo {
	return observability.ServiceInfo{
		Name:        c.Name,
		Version:     c.Version,
		Environment: c.Environment,
	}
}
