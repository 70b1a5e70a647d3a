package extractors

import (
	"time"

	"github.com/kbukum/extractd/extract"
	"github.com/kbukum/extractd/logger"
	"github.com/kbukum/extractd/validation"
)

// Delays is the simulated latency of an extractor.
type Delays struct {
	Row      time.Duration `mapstructure:"row_delay" validate:"gte=0"`
	Complete time.Duration `mapstructure:"complete_delay" validate:"gte=0"`
}

var (
	DefaultProductDelays = Delays{Row: time.Second, Complete: 2 * time.Second}
	DefaultShopDelays    = Delays{Row: 1500 * time.Millisecond, Complete: 2500 * time.Millisecond}
)

// Config configures the sample extractors.
type Config struct {
	Product Delays `mapstructure:"product"`
	Shop    Delays `mapstructure:"shop"`
}

// ApplyDefaults replaces an entirely unset delay pair with the defaults.
func (c *Config) ApplyDefaults() {
	if c.Product == (Delays{}) {
		c.Product = DefaultProductDelays
	}
	if c.Shop == (Delays{}) {
		c.Shop = DefaultShopDelays
	}
}

// Validate rejects negative delays.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Build returns the product and shop extractors, in that order.
func (c Config) Build(log *logger.Logger) []extract.Extractor {
	return []extract.Extractor{
		NewProduct(c.Product, log),
		NewShop(c.Shop, log),
	}
}
