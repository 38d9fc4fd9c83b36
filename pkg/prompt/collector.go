// Package prompt collects instance parameter values interactively.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-extparams/pkg/parameter"
	"github.com/goliatone/go-extparams/pkg/validation"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned when MaxAttempts invalid answers were
	// given for one parameter.
	ErrTooManyAttempts = errors.New("prompt: too many invalid answers")
)

// skipLabel is offered as the last choice of an optional select.
const skipLabel = "(none)"

// Collector walks parameter definitions in order and asks for the value of
// every parameter that is active given the answers so far.
type Collector struct {
	driver Driver
	// MaxAttempts bounds re-prompting after invalid answers. Zero means no
	// bound.
	MaxAttempts int
}

// NewCollector returns a collector prompting through driver.
func NewCollector(driver Driver) *Collector {
	return &Collector{driver: driver}
}

// Collect prompts for the active parameters of defs. prefill supplies the
// initial answers, falling back to each definition's default. Read-only
// parameters are not prompted. The returned values hold the non-empty values
// of the parameters that are active once every answer is in.
func (c *Collector) Collect(ctx context.Context, defs []parameter.Definition, prefill parameter.Values) (parameter.Values, error) {
	if c == nil || c.driver == nil {
		return nil, errors.New("prompt: driver is nil")
	}

	values := make(parameter.Values, len(prefill))
	for k, v := range prefill {
		values[k] = v
	}

	// A condition may reference a parameter declared after it, so later
	// answers can activate earlier definitions. Repeat the walk until no
	// unanswered parameter becomes active.
	asked := make(map[string]bool, len(defs))
	for round := 0; round <= len(defs); round++ {
		progressed := false
		for _, def := range defs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if asked[def.ID] || !validation.IsActive(def, values) {
				continue
			}
			asked[def.ID] = true
			progressed = true

			current := values[def.ID]
			if current == "" {
				current = def.Default
			}
			if def.ReadOnly {
				setValue(values, def.ID, current)
				continue
			}
			answer, err := c.ask(ctx, def, current)
			if err != nil {
				return nil, err
			}
			setValue(values, def.ID, answer)
		}
		if !progressed {
			break
		}
	}

	out := make(parameter.Values)
	for _, def := range validation.ActiveParameters(defs, values) {
		if v := values[def.ID]; v != "" {
			out[def.ID] = v
		}
	}
	return out, nil
}

func (c *Collector) ask(ctx context.Context, def parameter.Definition, current string) (string, error) {
	for attempt := 1; ; attempt++ {
		answer, err := c.askOnce(ctx, def, current)
		if err != nil {
			return "", err
		}
		res := validation.ValidateParameter(def, answer)
		if res.Success {
			return answer, nil
		}
		if c.MaxAttempts > 0 && attempt >= c.MaxAttempts {
			return "", fmt.Errorf("%w for %q: %s", ErrTooManyAttempts, def.ID, res.Message)
		}
		if err := c.driver.Info(ctx, def.Name+": "+res.Message); err != nil {
			return "", err
		}
		current = answer
	}
}

func (c *Collector) askOnce(ctx context.Context, def parameter.Definition, current string) (string, error) {
	message := def.Name
	if def.Required {
		message += " *"
	}

	switch spec := def.Spec.(type) {
	case parameter.SelectSpec:
		if len(spec.Options) == 0 {
			return "", fmt.Errorf("prompt: parameter %q has no options", def.ID)
		}
		labels := spec.Options.Labels()
		if !def.Required {
			labels = append(labels, skipLabel)
		}
		defaultIndex := 0
		if current == "" && !def.Required {
			defaultIndex = len(spec.Options)
		}
		for i, opt := range spec.Options {
			if opt.ID == current {
				defaultIndex = i
			}
		}
		idx, err := c.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: defaultIndex,
			Help:         def.Placeholder,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(spec.Options) {
			return "", nil
		}
		return spec.Options[idx].ID, nil
	case parameter.BooleanSpec:
		ok, err := c.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Default: current == "true",
			Help:    def.Placeholder,
		})
		if err != nil {
			return "", err
		}
		if ok {
			return "true", nil
		}
		return "false", nil
	default:
		return c.driver.Input(ctx, InputConfig{
			Message: message,
			Default: current,
			Help:    def.Placeholder,
		})
	}
}

func setValue(values parameter.Values, id, value string) {
	if value == "" {
		delete(values, id)
		return
	}
	values[id] = value
}
