package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"orl-assistant/internal/repository/contract"
)

// FileTokenRepository keeps named slots in a single JSON object on disk, readable only by the owner.
type FileTokenRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileTokenRepository(path string) contract.TokenRepository {
	return &FileTokenRepository{path: path}
}

func (r *FileTokenRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.read()
	if err != nil {
		return "", false, err
	}
	value, ok := slots[key]
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (r *FileTokenRepository) Set(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future login.
		slots = map[string]string{}
	}
	slots[key] = value
	return r.write(slots)
}

func (r *FileTokenRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := slots[key]; !ok {
		return nil
	}
	delete(slots, key)
	if len(slots) == 0 {
		if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove credentials file: %w", err)
		}
		return nil
	}
	return r.write(slots)
}

func (r *FileTokenRepository) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	slots := map[string]string{}
	if len(data) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("decode credentials file: %w", err)
	}
	return slots, nil
}

func (r *FileTokenRepository) write(slots map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credentials file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}
	return nil
}
