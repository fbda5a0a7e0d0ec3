package config

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/render"
)

// Validate checks the configuration and resolves the dialect.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Format) == 0 {
		c.Format = FormatSelection{render.FormatJSON}
	}

	d, err := dialect.Lookup(c.DialectName)
	if err != nil {
		errs = append(errs, err)
	} else {
		c.Dialect = d
	}

	if c.YAML.MaxDepth < render.DefaultMaxDepth {
		errs = append(errs, fmt.Errorf("yaml.max_depth must be at least %d, got %d", render.DefaultMaxDepth, c.YAML.MaxDepth))
	}
	if c.HTML.Title == "" {
		c.HTML.Title = render.DefaultTitle
	}
	if c.Serve.Addr == "" {
		errs = append(errs, errors.New("serve.addr is required"))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
