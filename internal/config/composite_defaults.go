package config

import (
	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&PathsDefaultApplier{},
			&BuildDefaultApplier{},
			&DevelopmentDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "applying defaults").
				WithContext("domain", applier.Domain()).
				Build()
		}
	}
	return nil
}

// GetApplierByDomain returns a specific domain applier.
func (c *CompositeDefaultApplier) GetApplierByDomain(domain string) DefaultApplier {
	for _, applier := range c.appliers {
		if applier.Domain() == domain {
			return applier
		}
	}
	return nil
}
