package extparams_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-extparams"
	"github.com/goliatone/go-extparams/pkg/extension"
	"github.com/goliatone/go-extparams/pkg/testsupport"
)

const fixture = "examples/fixtures/cloud-storage.yaml"

func TestValidateDocumentFixture(t *testing.T) {
	t.Parallel()

	doc := testsupport.LoadDocument(t, fixture)

	res := extparams.ValidateDocument(doc, doc.Values)
	if res.Success {
		t.Fatal("expected sample values to miss the bucket")
	}
	if diff := cmp.Diff("Bucket & Path: This is a required parameter.", res.Message); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}

	values := testsupport.MustParseValues(t, `{"direction": "export", "overwrite": "true"}`)
	if res := extparams.Validate(doc.Parameters, values); !res.Success {
		t.Fatalf("expected export values to pass, got %q", res.Message)
	}

	var ids []string
	for _, def := range extparams.ActiveParameters(doc.Parameters, values) {
		ids = append(ids, def.ID)
	}
	if diff := cmp.Diff([]string{"direction", "amount", "overwrite"}, ids); diff != "" {
		t.Fatalf("active ids mismatch (-want +got):\n%s", diff)
	}

	amount := doc.Parameters[1]
	if res := extparams.ValidateParameter(amount, "12a"); res.Success {
		t.Fatal("expected pattern mismatch")
	}
}

func TestLoadDocuments(t *testing.T) {
	t.Parallel()

	store, err := extparams.LoadDocuments(fstest.MapFS{
		"a.json": {Data: []byte(`{"extension": "a", "version": "1.0.0", "parameters": []}`)},
		"b.yml":  {Data: []byte("extension: b\nparameters: []\n")},
	})
	if err != nil {
		t.Fatalf("load documents: %v", err)
	}
	if diff := cmp.Diff([]string{"a@1.0.0", "b"}, store.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestNewControllerGatesInstances(t *testing.T) {
	t.Parallel()

	ctx := testsupport.Context()
	doc := testsupport.LoadDocument(t, fixture)
	ctrl, err := extparams.NewController([]extension.Extension{testsupport.NewDocumentExtension(doc)})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	sql := &testsupport.SQLRecorder{}
	if err := ctrl.Install(ctx, sql, "cloud-storage", "2.4.0"); err != nil {
		t.Fatalf("install: %v", err)
	}

	_, err = ctrl.AddInstance(ctx, sql, "cloud-storage", "2.4.0", extparams.Values{"direction": "import"})
	var invalid *extension.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}

	inst, err := ctrl.AddInstance(ctx, sql, "cloud-storage", "2.4.0", extparams.Values{"direction": "export"})
	if err != nil {
		t.Fatalf("add instance: %v", err)
	}
	got, err := ctrl.ReadInstanceParameters(ctx, sql, "cloud-storage", "2.4.0", inst.ID)
	if err != nil {
		t.Fatalf("read instance: %v", err)
	}
	if diff := cmp.Diff(extparams.Values{"direction": "export"}, got); diff != "" {
		t.Fatalf("stored values mismatch (-want +got):\n%s", diff)
	}
	if err := ctrl.DeleteInstance(ctx, sql, "cloud-storage", "2.4.0", inst.ID); err != nil {
		t.Fatalf("delete instance: %v", err)
	}

	want := []string{
		"CREATE SCRIPT cloud-storage_2_4_0",
		"CREATE INSTANCE cloud-storage-1",
		"DROP INSTANCE cloud-storage-1",
	}
	if diff := cmp.Diff(want, sql.Statements()); diff != "" {
		t.Fatalf("statements mismatch (-want +got):\n%s", diff)
	}

	if _, err := extparams.NewController([]extension.Extension{
		testsupport.NewDocumentExtension(doc),
		testsupport.NewDocumentExtension(doc),
	}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
