package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Persister stores named JSON documents. Load reports found=false when no
// document was saved under key.
type Persister interface {
	Load(key string, v any) (found bool, err error)
	Save(key string, v any) error
	Delete(key string) error
}

// FilePersister keeps one <key>.json file per document in Dir.
type FilePersister struct {
	Dir string
}

func (p FilePersister) path(key string) string {
	return filepath.Join(p.Dir, key+".json")
}

func (p FilePersister) Load(key string, v any) (bool, error) {
	b, err := os.ReadFile(p.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", p.path(key), err)
	}
	return true, nil
}

// Save writes the document through a temp file so a crash never leaves a
// truncated file behind. Files are private to the user; they hold tokens.
func (p FilePersister) Save(key string, v any) error {
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(p.Dir, "."+key+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.path(key))
}

func (p FilePersister) Delete(key string) error {
	if err := os.Remove(p.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryPersister keeps documents in memory.
type MemoryPersister struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{docs: map[string][]byte{}}
}

func (p *MemoryPersister) Load(key string, v any) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.docs[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, v)
}

func (p *MemoryPersister) Save(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[key] = b
	return nil
}

func (p *MemoryPersister) Delete(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.docs, key)
	return nil
}
