package compiler

import (
	"fmt"
	"log/slog"

	"github.com/recera/lwcgen/pkg/ir"
	"github.com/recera/lwcgen/pkg/jsfmt"
	"github.com/recera/lwcgen/pkg/plugins"
	"github.com/recera/lwcgen/pkg/styling"
)

// StateType selects how data fields are declared.
type StateType string

const (
	// StateVariables declares every data field on its own.
	StateVariables StateType = "variables"
	// StateProxies wraps all data fields in one change-tracking object.
	StateProxies StateType = "proxies"
)

// StyleCollector extracts the stylesheet of a component. It may rewrite the
// tree, for example to attach generated class names.
type StyleCollector interface {
	Collect(c *ir.Component) (string, error)
}

// Options configure one compilation.
type Options struct {
	StateType  StateType
	TypeScript bool
	// Prettier enables the formatting pass.
	Prettier bool
	// Plugins run after the built-in function declaration plugin.
	Plugins []plugins.Plugin

	Logger    *slog.Logger
	Formatter jsfmt.Formatter
	Styles    StyleCollector
	Dialect   *Dialect
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		StateType: StateVariables,
		Prettier:  true,
	}
}

// Validate reports options that cannot be compiled with.
func (o Options) Validate() error {
	switch o.StateType {
	case "", StateVariables, StateProxies:
		return nil
	default:
		return fmt.Errorf("unknown state type %q", o.StateType)
	}
}

func (o Options) withDefaults() Options {
	if o.StateType == "" {
		o.StateType = StateVariables
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Formatter == nil {
		o.Formatter = jsfmt.Pretty{}
	}
	if o.Styles == nil {
		o.Styles = &styling.Collector{Logger: o.Logger}
	}
	if o.Dialect == nil {
		o.Dialect = LWC()
	}
	return o
}
