package extension

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-extparams/pkg/parameter"
	"github.com/goliatone/go-extparams/pkg/validation"
)

// Controller is the host side entry point. It resolves extensions from a
// Registry and refuses to create instances from invalid parameter values.
type Controller struct {
	registry  *Registry
	validator *validation.Validator
	logger    *log.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller logger. Nil keeps the default, which
// discards output.
func WithLogger(logger *log.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithValidator sets the validator used for instance parameters.
func WithValidator(v *validation.Validator) ControllerOption {
	return func(c *Controller) {
		if v != nil {
			c.validator = v
		}
	}
}

// NewController builds a controller over registry.
func NewController(registry *Registry, options ...ControllerOption) *Controller {
	if registry == nil {
		registry = NewRegistry()
	}
	c := &Controller{
		registry:  registry,
		validator: validation.New(),
		logger:    log.New(io.Discard),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Registry exposes the registry the controller resolves extensions from.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Install installs version of the extension. The version must be listed as
// installable by the extension descriptor.
func (c *Controller) Install(ctx context.Context, sql SQLClient, extensionID, version string) error {
	ext, err := c.resolve(ctx, extensionID)
	if err != nil {
		return err
	}
	if !ext.Descriptor().Installable(version) {
		return fmt.Errorf("extension: version %q of %s is not installable", version, extensionID)
	}
	c.logger.Info("installing extension", "extension", extensionID, "version", version)
	if err := ext.Install(ctx, sql, version); err != nil {
		return fmt.Errorf("extension: install %s@%s: %w", extensionID, version, err)
	}
	return nil
}

// FindInstallations collects the installations of every registered
// extension, in registry order.
func (c *Controller) FindInstallations(ctx context.Context, sql SQLClient) ([]Installation, error) {
	var out []Installation
	for _, desc := range c.registry.List() {
		ext, err := c.resolve(ctx, desc.ID)
		if err != nil {
			return nil, err
		}
		found, err := ext.FindInstallations(ctx, sql)
		if err != nil {
			return nil, fmt.Errorf("extension: find installations of %s: %w", desc.ID, err)
		}
		for _, inst := range found {
			inst.ExtensionID = desc.ID
			out = append(out, inst)
		}
	}
	return out, nil
}

// Uninstall removes version of the extension. Instances are not deleted.
func (c *Controller) Uninstall(ctx context.Context, sql SQLClient, extensionID, version string) error {
	ext, err := c.resolve(ctx, extensionID)
	if err != nil {
		return err
	}
	c.logger.Info("uninstalling extension", "extension", extensionID, "version", version)
	if err := ext.Uninstall(ctx, sql, version); err != nil {
		return fmt.Errorf("extension: uninstall %s@%s: %w", extensionID, version, err)
	}
	return nil
}

// Upgrade upgrades the extension to its latest version.
func (c *Controller) Upgrade(ctx context.Context, sql SQLClient, extensionID string) (UpgradeResult, error) {
	ext, err := c.resolve(ctx, extensionID)
	if err != nil {
		return UpgradeResult{}, err
	}
	res, err := ext.Upgrade(ctx, sql)
	if err != nil {
		return UpgradeResult{}, fmt.Errorf("extension: upgrade %s: %w", extensionID, err)
	}
	c.logger.Info("upgraded extension", "extension", extensionID, "from", res.PreviousVersion, "to", res.NewVersion)
	return res, nil
}

// InstanceParameters returns the parameter definitions of version.
func (c *Controller) InstanceParameters(ctx context.Context, extensionID, version string) ([]parameter.Definition, error) {
	ext, err := c.resolve(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	defs, err := ext.InstanceParameters(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("extension: instance parameters of %s@%s: %w", extensionID, version, err)
	}
	return defs, nil
}

// ValidateInstanceParameters validates values against the definitions of
// version without creating anything.
func (c *Controller) ValidateInstanceParameters(ctx context.Context, extensionID, version string, values parameter.Values) (validation.Result, error) {
	defs, err := c.InstanceParameters(ctx, extensionID, version)
	if err != nil {
		return validation.Result{}, err
	}
	return c.validator.Validate(extensionID, defs, values), nil
}

// AddInstance validates values and, when they pass, asks the extension to
// create the instance. Invalid values yield a *ValidationError and the
// extension is not called.
func (c *Controller) AddInstance(ctx context.Context, sql SQLClient, extensionID, version string, values parameter.Values) (Instance, error) {
	res, err := c.ValidateInstanceParameters(ctx, extensionID, version, values)
	if err != nil {
		return Instance{}, err
	}
	if !res.Success {
		c.logger.Warn("rejected instance parameters",
			"extension", extensionID,
			"version", version,
			"findings", len(res.Findings),
		)
		return Instance{}, &ValidationError{Extension: extensionID, Version: version, Result: res}
	}

	ext, err := c.resolve(ctx, extensionID)
	if err != nil {
		return Instance{}, err
	}
	inst, err := ext.AddInstance(ctx, sql, version, values)
	if err != nil {
		return Instance{}, fmt.Errorf("extension: add instance of %s@%s: %w", extensionID, version, err)
	}
	c.logger.Info("added instance", "extension", extensionID, "version", version, "instance", inst.ID)
	return inst, nil
}

// FindInstances lists the instances of version.
func (c *Controller) FindInstances(ctx context.Context, sql SQLClient, extensionID, version string) ([]Instance, error) {
	ext, err := c.resolve(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	out, err := ext.FindInstances(ctx, sql, version)
	if err != nil {
		return nil, fmt.Errorf("extension: find instances of %s@%s: %w", extensionID, version, err)
	}
	return out, nil
}

// ReadInstanceParameters returns the stored parameter values of an instance.
func (c *Controller) ReadInstanceParameters(ctx context.Context, sql SQLClient, extensionID, version, instanceID string) (parameter.Values, error) {
	ext, err := c.resolve(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	values, err := ext.ReadInstanceParameters(ctx, sql, version, instanceID)
	if err != nil {
		return nil, fmt.Errorf("extension: read parameters of instance %s of %s@%s: %w", instanceID, extensionID, version, err)
	}
	return values, nil
}

// DeleteInstance deletes an instance.
func (c *Controller) DeleteInstance(ctx context.Context, sql SQLClient, extensionID, version, instanceID string) error {
	ext, err := c.resolve(ctx, extensionID)
	if err != nil {
		return err
	}
	c.logger.Info("deleting instance", "extension", extensionID, "version", version, "instance", instanceID)
	if err := ext.DeleteInstance(ctx, sql, version, instanceID); err != nil {
		return fmt.Errorf("extension: delete instance %s of %s@%s: %w", instanceID, extensionID, version, err)
	}
	return nil
}

func (c *Controller) resolve(ctx context.Context, extensionID string) (Extension, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.registry.Get(extensionID)
}
