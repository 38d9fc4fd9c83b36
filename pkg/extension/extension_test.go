package extension

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-extparams/pkg/condition/expr"
	"github.com/goliatone/go-extparams/pkg/parameter"
	"github.com/goliatone/go-extparams/pkg/validation"
)

type recordingSQL struct {
	mu         sync.Mutex
	statements []string
}

func (s *recordingSQL) Execute(_ context.Context, query string, _ ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = append(s.statements, query)
	return nil
}

func (s *recordingSQL) Query(_ context.Context, query string, _ ...any) (QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = append(s.statements, query)
	return QueryResult{
		Columns: []Column{{Name: "VERSION", TypeName: "VARCHAR"}},
		Rows:    []Row{{"1.1.0"}},
	}, nil
}

type fakeExtension struct {
	desc      Descriptor
	added     []parameter.Values
	instances []Instance
	paramsErr error
}

func newFakeExtension(id string) *fakeExtension {
	return &fakeExtension{desc: Descriptor{
		ID:          id,
		Name:        "Cloud Storage",
		Category:    "storage",
		Description: "Import from and export to cloud storage",
		APIVersion:  "0.2.3",
		InstallableVersions: []InstallableVersion{
			{Name: "1.0.0", Deprecated: true},
			{Name: "1.1.0", Latest: true},
		},
		BucketFSUploads: []BucketFSUpload{{
			Name:             "Cloud storage jar",
			DownloadURL:      "https://example.com/cloud-storage-1.1.0.jar",
			LicenseURL:       "https://example.com/LICENSE",
			BucketFSFilename: "cloud-storage-1.1.0.jar",
			FileSize:         1024,
		}},
	}}
}

func (f *fakeExtension) Descriptor() Descriptor { return f.desc }

func (f *fakeExtension) Install(ctx context.Context, sql SQLClient, version string) error {
	return sql.Execute(ctx, "CREATE ADAPTER SCRIPT cloud_storage_"+version)
}

func (f *fakeExtension) FindInstallations(context.Context, SQLClient) ([]Installation, error) {
	return []Installation{{Name: f.desc.Name, Version: "1.1.0"}}, nil
}

func (f *fakeExtension) Uninstall(ctx context.Context, sql SQLClient, version string) error {
	return sql.Execute(ctx, "DROP ADAPTER SCRIPT cloud_storage_"+version)
}

func (f *fakeExtension) Upgrade(ctx context.Context, sql SQLClient) (UpgradeResult, error) {
	res, err := sql.Query(ctx, "SELECT version FROM installed")
	if err != nil {
		return UpgradeResult{}, err
	}
	return UpgradeResult{PreviousVersion: "1.0.0", NewVersion: res.Rows[0][0].(string)}, nil
}

func (f *fakeExtension) InstanceParameters(context.Context, string) ([]parameter.Definition, error) {
	if f.paramsErr != nil {
		return nil, f.paramsErr
	}
	return []parameter.Definition{
		parameter.Select("direction", "Direction", parameter.OptionsOf("import", "Import", "export", "Export"), parameter.Required()),
		parameter.String("bucket", "Bucket", parameter.Required(), parameter.WithCondition(expr.MustParse(`direction == "import"`))),
	}, nil
}

func (f *fakeExtension) AddInstance(_ context.Context, _ SQLClient, _ string, values parameter.Values) (Instance, error) {
	f.added = append(f.added, values)
	inst := Instance{ID: "instance-1", Name: values["bucket"]}
	f.instances = append(f.instances, inst)
	return inst, nil
}

func (f *fakeExtension) FindInstances(context.Context, SQLClient, string) ([]Instance, error) {
	return f.instances, nil
}

func (f *fakeExtension) ReadInstanceParameters(_ context.Context, _ SQLClient, _ string, instanceID string) (parameter.Values, error) {
	if len(f.added) == 0 || instanceID != "instance-1" {
		return nil, errors.New("no such instance")
	}
	return f.added[0], nil
}

func (f *fakeExtension) DeleteInstance(ctx context.Context, sql SQLClient, _ string, instanceID string) error {
	return sql.Execute(ctx, "DROP VIRTUAL SCHEMA "+instanceID)
}

func TestCheckAPIVersion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		version string
		wantErr bool
	}{
		{version: "0.2.0"},
		{version: "0.1.0"},
		{version: "0.9.3"},
		{version: "1.0.0", wantErr: true},
		{version: "v0.2.0", wantErr: true},
		{version: "0.2", wantErr: true},
		{version: "", wantErr: true},
	}

	for _, tc := range cases {
		err := CheckAPIVersion("ext", tc.version)
		if (err != nil) != tc.wantErr {
			t.Fatalf("CheckAPIVersion(%q) error = %v, wantErr %v", tc.version, err, tc.wantErr)
		}
		if err != nil {
			var apiErr *APIVersionError
			if !errors.As(err, &apiErr) || apiErr.Supported != SupportedAPIVersion {
				t.Fatalf("expected *APIVersionError, got %T", err)
			}
		}
	}
}

func TestDescriptorValidate(t *testing.T) {
	t.Parallel()

	if err := newFakeExtension("cloud-storage").desc.Validate(); err != nil {
		t.Fatalf("valid descriptor rejected: %v", err)
	}

	broken := newFakeExtension("cloud-storage").desc
	broken.Description = ""
	broken.InstallableVersions = []InstallableVersion{{Name: "latest"}}
	broken.BucketFSUploads[0].DownloadURL = "not a url"

	err := broken.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, fragment := range []string{"Description", "InstallableVersions[0].Name", "DownloadURL"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q does not mention %s", err, fragment)
		}
	}

	desc := newFakeExtension("x").desc
	if !desc.Installable("1.0.0") || desc.Installable("2.0.0") {
		t.Fatalf("Installable mismatch")
	}
	if desc.LatestVersion() != "1.1.0" {
		t.Fatalf("LatestVersion = %q", desc.LatestVersion())
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Register(newFakeExtension("b-ext")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(newFakeExtension("a-ext")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(newFakeExtension("a-ext")); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil registration to fail")
	}

	future := newFakeExtension("future")
	future.desc.APIVersion = "1.0.0"
	var apiErr *APIVersionError
	if err := reg.Register(future); !errors.As(err, &apiErr) {
		t.Fatalf("expected API version error, got %v", err)
	}

	var ids []string
	for _, desc := range reg.List() {
		ids = append(ids, desc.ID)
	}
	if diff := cmp.Diff([]string{"a-ext", "b-ext"}, ids); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}

	if _, err := reg.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func newTestController(t *testing.T, ext *fakeExtension, options ...ControllerOption) *Controller {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register(ext); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return NewController(reg, options...)
}

func TestControllerRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})

	var observed []validation.Result
	v := validation.New(validation.WithObserver(validation.ObserverFunc(func(_ string, res validation.Result) {
		observed = append(observed, res)
	})))

	ext := newFakeExtension("cloud-storage")
	ctrl := newTestController(t, ext, WithLogger(logger), WithValidator(v))

	_, err := ctrl.AddInstance(context.Background(), &recordingSQL{}, "cloud-storage", "1.1.0", parameter.Values{"direction": "import"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Result.Message != "Bucket: This is a required parameter." {
		t.Fatalf("unexpected message %q", verr.Result.Message)
	}
	if len(ext.added) != 0 {
		t.Fatalf("extension must not be called with invalid values")
	}
	if len(observed) != 1 || observed[0].Success {
		t.Fatalf("validator observer not notified: %+v", observed)
	}
	if !strings.Contains(logs.String(), "rejected instance parameters") {
		t.Fatalf("expected warning log, got %q", logs.String())
	}
}

func TestControllerLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sql := &recordingSQL{}
	ext := newFakeExtension("cloud-storage")
	ctrl := newTestController(t, ext)

	if err := ctrl.Install(ctx, sql, "cloud-storage", "9.9.9"); err == nil {
		t.Fatalf("expected non-installable version to be rejected")
	}
	if err := ctrl.Install(ctx, sql, "cloud-storage", "1.1.0"); err != nil {
		t.Fatalf("Install: %v", err)
	}

	installations, err := ctrl.FindInstallations(ctx, sql)
	if err != nil {
		t.Fatalf("FindInstallations: %v", err)
	}
	want := []Installation{{ExtensionID: "cloud-storage", Name: "Cloud Storage", Version: "1.1.0"}}
	if diff := cmp.Diff(want, installations); diff != "" {
		t.Fatalf("installations mismatch (-want +got):\n%s", diff)
	}

	values := parameter.Values{"direction": "import", "bucket": "s3://data"}
	inst, err := ctrl.AddInstance(ctx, sql, "cloud-storage", "1.1.0", values)
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	if diff := cmp.Diff(Instance{ID: "instance-1", Name: "s3://data"}, inst); diff != "" {
		t.Fatalf("instance mismatch (-want +got):\n%s", diff)
	}

	instances, err := ctrl.FindInstances(ctx, sql, "cloud-storage", "1.1.0")
	if err != nil || len(instances) != 1 {
		t.Fatalf("FindInstances = %v, %v", instances, err)
	}
	read, err := ctrl.ReadInstanceParameters(ctx, sql, "cloud-storage", "1.1.0", "instance-1")
	if err != nil {
		t.Fatalf("ReadInstanceParameters: %v", err)
	}
	if diff := cmp.Diff(values, read); diff != "" {
		t.Fatalf("read values mismatch (-want +got):\n%s", diff)
	}
	if _, err := ctrl.ReadInstanceParameters(ctx, sql, "cloud-storage", "1.1.0", "other"); err == nil {
		t.Fatalf("expected error for unknown instance")
	}

	if err := ctrl.DeleteInstance(ctx, sql, "cloud-storage", "1.1.0", "instance-1"); err != nil {
		t.Fatalf("DeleteInstance: %v", err)
	}
	upgraded, err := ctrl.Upgrade(ctx, sql, "cloud-storage")
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if diff := cmp.Diff(UpgradeResult{PreviousVersion: "1.0.0", NewVersion: "1.1.0"}, upgraded); diff != "" {
		t.Fatalf("upgrade mismatch (-want +got):\n%s", diff)
	}
	if err := ctrl.Uninstall(ctx, sql, "cloud-storage", "1.1.0"); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}

	wantStatements := []string{
		"CREATE ADAPTER SCRIPT cloud_storage_1.1.0",
		"DROP VIRTUAL SCHEMA instance-1",
		"SELECT version FROM installed",
		"DROP ADAPTER SCRIPT cloud_storage_1.1.0",
	}
	if diff := cmp.Diff(wantStatements, sql.statements); diff != "" {
		t.Fatalf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerErrors(t *testing.T) {
	t.Parallel()

	ext := newFakeExtension("cloud-storage")
	ext.paramsErr = errors.New("boom")
	ctrl := newTestController(t, ext)

	if _, err := ctrl.AddInstance(context.Background(), &recordingSQL{}, "unknown", "1.0.0", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := ctrl.InstanceParameters(context.Background(), "cloud-storage", "1.1.0"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped extension error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ctrl.Install(ctx, &recordingSQL{}, "cloud-storage", "1.1.0"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
