package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Storage = (*File)(nil)

// File persists values as a JSON object on disk. Every write rewrites the file
// through a temp file and rename, so a SetMany lands entirely or not at all.
type File struct {
	path   string
	values map[string]string
	lock   sync.RWMutex
}

// OpenFile loads path, creating an empty state when the file does not exist yet.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, values: make(map[string]string)}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[storage.OpenFile] read")
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.values); err != nil {
		return nil, errors.Wrapf(err, "[storage.OpenFile] decode %s", path)
	}
	return f, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	return f.SetMany(map[string]string{key: value})
}

func (f *File) SetMany(values map[string]string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	next := f.copyValues()
	for k, v := range values {
		next[k] = v
	}
	return f.commit(next)
}

func (f *File) Remove(keys ...string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	next := f.copyValues()
	for _, k := range keys {
		delete(next, k)
	}
	return f.commit(next)
}

func (f *File) Clear() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.commit(make(map[string]string))
}

func (f *File) copyValues() map[string]string {
	next := make(map[string]string, len(f.values))
	for k, v := range f.values {
		next[k] = v
	}
	return next
}

// commit must be called with the write lock held
func (f *File) commit(next map[string]string) error {
	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[storage.File.commit] encode")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "[storage.File.commit] mkdir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.json")
	if err != nil {
		return errors.Wrap(err, "[storage.File.commit] create temp")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[storage.File.commit] write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[storage.File.commit] chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[storage.File.commit] close")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrap(err, "[storage.File.commit] rename")
	}
	f.values = next
	return nil
}
