package document

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Store holds documents keyed by extension@version.
type Store struct {
	documents map[string]Document
}

// LoadFS walks fsys and parses every JSON/YAML document it finds. When fsys
// is nil or holds no documents the returned store is empty. Two documents
// with the same key are rejected.
func LoadFS(fsys fs.FS) (*Store, error) {
	return load(fsys, func(_ string, err error) error { return err })
}

// Failure is a document LoadFSPartial could not load.
type Failure struct {
	Source string
	Err    error
}

// LoadFSPartial is LoadFS that keeps going past documents that fail to
// parse or repeat an earlier key, returning them as failures in walk order.
// The error is reserved for problems walking fsys itself.
func LoadFSPartial(fsys fs.FS) (*Store, []Failure, error) {
	var failures []Failure
	store, err := load(fsys, func(path string, err error) error {
		failures = append(failures, Failure{Source: path, Err: err})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return store, failures, nil
}

// load parses the documents under fsys. onFail decides whether a document
// level error stops the walk.
func load(fsys fs.FS, onFail func(path string, err error) error) (*Store, error) {
	store := &Store{documents: make(map[string]Document)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDocumentFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return onFail(path, fmt.Errorf("document: read %s: %w", path, err))
		}
		doc, err := Parse(data, path)
		if err != nil {
			return onFail(path, err)
		}

		key := doc.Key()
		if existing, ok := store.documents[key]; ok {
			return onFail(path, fmt.Errorf("document: duplicate document %q (files %s and %s)", key, existing.Source, path))
		}
		store.documents[key] = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Document returns the document for extension and version. An empty version
// matches a document declared without one.
func (s *Store) Document(extension, version string) (Document, bool) {
	if s == nil {
		return Document{}, false
	}
	doc, ok := s.documents[Key(extension, version)]
	return doc, ok
}

// Keys lists the document keys in sorted order.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.documents))
	for key := range s.documents {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Documents returns every document ordered by key.
func (s *Store) Documents() []Document {
	keys := s.Keys()
	out := make([]Document, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.documents[key])
	}
	return out
}

// Len reports how many documents the store holds.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.documents)
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
