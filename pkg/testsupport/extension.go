package testsupport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-extparams/pkg/document"
	"github.com/goliatone/go-extparams/pkg/extension"
	"github.com/goliatone/go-extparams/pkg/parameter"
)

// SQLRecorder is an extension.SQLClient that records every statement and
// answers queries with a fixed result.
type SQLRecorder struct {
	mu         sync.Mutex
	statements []string

	// Result is returned by Query.
	Result extension.QueryResult
}

// Execute records query.
func (r *SQLRecorder) Execute(_ context.Context, query string, _ ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, query)
	return nil
}

// Query records query and returns r.Result.
func (r *SQLRecorder) Query(_ context.Context, query string, _ ...any) (extension.QueryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, query)
	return r.Result, nil
}

// Statements returns a copy of the recorded statements.
func (r *SQLRecorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statements...)
}

// DocumentExtension is an in-memory extension whose instance parameters
// come from a parameter document. Instances live in memory and every
// lifecycle call emits a statement through the SQL client.
type DocumentExtension struct {
	desc extension.Descriptor
	doc  document.Document

	mu        sync.Mutex
	installed []string
	instances map[string]instanceRecord
	nextID    int
}

type instanceRecord struct {
	version string
	values  parameter.Values
}

// NewDocumentExtension builds an extension for doc. The document version is
// the only installable version.
func NewDocumentExtension(doc document.Document) *DocumentExtension {
	version := doc.Version
	if version == "" {
		version = "1.0.0"
	}
	return &DocumentExtension{
		doc: doc,
		desc: extension.Descriptor{
			ID:          doc.Extension,
			Name:        doc.Extension,
			Category:    "test",
			Description: "In-memory extension for " + doc.Key(),
			APIVersion:  extension.SupportedAPIVersion,
			InstallableVersions: []extension.InstallableVersion{
				{Name: version, Latest: true},
			},
		},
		instances: make(map[string]instanceRecord),
	}
}

func (e *DocumentExtension) Descriptor() extension.Descriptor { return e.desc }

func (e *DocumentExtension) Install(ctx context.Context, sql extension.SQLClient, version string) error {
	if err := sql.Execute(ctx, "CREATE SCRIPT "+e.scriptName(version)); err != nil {
		return err
	}
	e.mu.Lock()
	e.installed = append(e.installed, version)
	e.mu.Unlock()
	return nil
}

func (e *DocumentExtension) FindInstallations(context.Context, extension.SQLClient) ([]extension.Installation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]extension.Installation, 0, len(e.installed))
	for _, version := range e.installed {
		out = append(out, extension.Installation{Name: e.desc.Name, Version: version})
	}
	return out, nil
}

func (e *DocumentExtension) Uninstall(ctx context.Context, sql extension.SQLClient, version string) error {
	if err := sql.Execute(ctx, "DROP SCRIPT "+e.scriptName(version)); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.installed[:0]
	for _, v := range e.installed {
		if v != version {
			kept = append(kept, v)
		}
	}
	e.installed = kept
	return nil
}

func (e *DocumentExtension) Upgrade(context.Context, extension.SQLClient) (extension.UpgradeResult, error) {
	latest := e.desc.LatestVersion()
	return extension.UpgradeResult{PreviousVersion: latest, NewVersion: latest}, nil
}

func (e *DocumentExtension) InstanceParameters(context.Context, string) ([]parameter.Definition, error) {
	return e.doc.Parameters, nil
}

func (e *DocumentExtension) AddInstance(ctx context.Context, sql extension.SQLClient, version string, values parameter.Values) (extension.Instance, error) {
	e.mu.Lock()
	e.nextID++
	id := e.desc.ID + "-" + strconv.Itoa(e.nextID)
	copied := make(parameter.Values, len(values))
	for k, v := range values {
		copied[k] = v
	}
	e.instances[id] = instanceRecord{version: version, values: copied}
	e.mu.Unlock()

	if err := sql.Execute(ctx, "CREATE INSTANCE "+id); err != nil {
		return extension.Instance{}, err
	}
	return extension.Instance{ID: id, Name: id}, nil
}

func (e *DocumentExtension) FindInstances(_ context.Context, _ extension.SQLClient, version string) ([]extension.Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []extension.Instance
	for id := 1; id <= e.nextID; id++ {
		key := e.desc.ID + "-" + strconv.Itoa(id)
		if rec, ok := e.instances[key]; ok && rec.version == version {
			out = append(out, extension.Instance{ID: key, Name: key})
		}
	}
	return out, nil
}

func (e *DocumentExtension) ReadInstanceParameters(_ context.Context, _ extension.SQLClient, _ string, instanceID string) (parameter.Values, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.instances[instanceID]
	if !ok {
		return nil, fmt.Errorf("instance %q: %w", instanceID, extension.ErrNotFound)
	}
	return rec.values, nil
}

func (e *DocumentExtension) DeleteInstance(ctx context.Context, sql extension.SQLClient, _ string, instanceID string) error {
	e.mu.Lock()
	_, ok := e.instances[instanceID]
	delete(e.instances, instanceID)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("instance %q: %w", instanceID, extension.ErrNotFound)
	}
	return sql.Execute(ctx, "DROP INSTANCE "+instanceID)
}

func (e *DocumentExtension) scriptName(version string) string {
	return strings.ReplaceAll(e.desc.ID+"_"+version, ".", "_")
}
