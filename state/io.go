package state

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

// FullReader resolves config and include names to content.
// Missing source is (nil, nil), include decides whether that is an error.
type FullReader interface {
	Normalize(name string) string
	ReadAll(name string) ([]byte, error)
}

// OsFullReader reads files, relative names are joined to directory of main config.
type OsFullReader struct {
	dir string
}

func NewOsFullReader() *OsFullReader { return &OsFullReader{} }

func (r *OsFullReader) SetBase(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Annotatef(err, "config dir=%s", dir)
	}
	r.dir = abs
	return nil
}

func (r *OsFullReader) Normalize(name string) string {
	if !filepath.IsAbs(name) {
		name = filepath.Join(r.dir, name)
	}
	return filepath.Clean(name)
}

func (*OsFullReader) ReadAll(name string) ([]byte, error) {
	b, err := ioutil.ReadFile(name)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return b, errors.Annotate(err, "config read")
}

// MockFullReader serves sources from memory, keyed by cleaned name.
type MockFullReader struct {
	Map map[string]string
}

func NewMockFullReader(sources map[string]string) *MockFullReader {
	return &MockFullReader{Map: sources}
}

func (*MockFullReader) Normalize(name string) string { return filepath.Clean(name) }

func (m *MockFullReader) ReadAll(name string) ([]byte, error) {
	s, ok := m.Map[name]
	if !ok {
		return nil, nil
	}
	return []byte(s), nil
}
