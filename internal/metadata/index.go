package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// DefaultIndexFile is the index file name inside the output directory.
const DefaultIndexFile = "techdocs_metadata.json"

const pagesKey = "pages"

// WriteIndex appends records to the "pages" list of the JSON index at path
// and rewrites the file. A missing index starts empty. Other top-level keys
// and existing pages are preserved. With no records nothing is read or
// written.
func WriteIndex(fsys afero.Fs, path string, records []PageRecord) error {
	if len(records) == 0 {
		return nil
	}

	index, err := readIndex(fsys, path)
	if err != nil {
		return err
	}

	var pages []json.RawMessage
	if raw, ok := index[pagesKey]; ok {
		if err := json.Unmarshal(raw, &pages); err != nil {
			return fmt.Errorf("index %s: %q is not a list: %w", path, pagesKey, err)
		}
	}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode page %s: %w", rec.URL, err)
		}
		pages = append(pages, data)
	}

	encodedPages, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("encode pages: %w", err)
	}
	index[pagesKey] = encodedPages

	out, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, out, 0644); err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}
	return nil
}

// ReadIndex returns the page records stored in the index at path. A missing
// index has no records.
func ReadIndex(fsys afero.Fs, path string) ([]PageRecord, error) {
	index, err := readIndex(fsys, path)
	if err != nil {
		return nil, err
	}
	raw, ok := index[pagesKey]
	if !ok {
		return nil, nil
	}
	var records []PageRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("index %s: decode pages: %w", path, err)
	}
	return records, nil
}

func readIndex(fsys afero.Fs, path string) (map[string]json.RawMessage, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	index := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	if index == nil {
		index = map[string]json.RawMessage{}
	}
	return index, nil
}
