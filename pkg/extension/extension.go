// Package extension defines the contract between an extension host and the
// extensions it manages, plus the host side registry and controller that
// gate instance creation on parameter validation.
package extension

import (
	"context"

	"github.com/goliatone/go-extparams/pkg/parameter"
)

// Extension is implemented by every installable extension. The host passes
// a SQLClient bound to the target database; extensions never open their own
// connections.
type Extension interface {
	Descriptor() Descriptor
	Install(ctx context.Context, sql SQLClient, version string) error
	FindInstallations(ctx context.Context, sql SQLClient) ([]Installation, error)
	Uninstall(ctx context.Context, sql SQLClient, version string) error
	Upgrade(ctx context.Context, sql SQLClient) (UpgradeResult, error)
	InstanceParameters(ctx context.Context, version string) ([]parameter.Definition, error)
	AddInstance(ctx context.Context, sql SQLClient, version string, values parameter.Values) (Instance, error)
	FindInstances(ctx context.Context, sql SQLClient, version string) ([]Instance, error)
	ReadInstanceParameters(ctx context.Context, sql SQLClient, version, instanceID string) (parameter.Values, error)
	DeleteInstance(ctx context.Context, sql SQLClient, version, instanceID string) error
}

// SQLClient runs statements against the database an extension is installed
// into.
type SQLClient interface {
	Execute(ctx context.Context, query string, args ...any) error
	Query(ctx context.Context, query string, args ...any) (QueryResult, error)
}

// QueryResult is the tabular result of SQLClient.Query.
type QueryResult struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Column describes one result column.
type Column struct {
	Name     string `json:"name"`
	TypeName string `json:"typeName"`
}

// Row holds the values of one result row in column order.
type Row []any

// Installation references an installed version of an extension.
type Installation struct {
	ExtensionID string `json:"extensionId,omitempty"`
	Name        string `json:"name"`
	Version     string `json:"version"`
}

// Instance references a configured instance, for example a virtual schema.
type Instance struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UpgradeResult reports the versions before and after an upgrade.
type UpgradeResult struct {
	PreviousVersion string `json:"previousVersion"`
	NewVersion      string `json:"newVersion"`
}
