// Package testsupport holds helpers shared by tests and examples: document
// fixtures, a recording SQL client and an in-memory extension backed by a
// parameter document.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/goliatone/go-extparams/pkg/document"
	"github.com/goliatone/go-extparams/pkg/parameter"
)

// LoadDocument parses a document fixture, failing the test on error.
func LoadDocument(t *testing.T, path string) document.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T, so
// examples and setup functions can share fixtures.
func LoadDocumentFromPath(path string) (document.Document, error) {
	if path == "" {
		return document.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := document.Parse(data, path)
	if err != nil {
		return document.Document{}, fmt.Errorf("testsupport: %w", err)
	}
	return doc, nil
}

// MustParseValues decodes a values payload in any form document.ParseValues
// accepts.
func MustParseValues(t *testing.T, payload string) parameter.Values {
	t.Helper()

	values, err := document.ParseValues([]byte(payload))
	if err != nil {
		t.Fatalf("parse values: %v", err)
	}
	return values
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
