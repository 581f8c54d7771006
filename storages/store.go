package storages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Store maps a program id to assembly text.
type Store interface {
	Load(id int64) (text string, ok bool, err error)
}

// Map is an in-memory store.
type Map struct {
	mu       sync.RWMutex
	programs map[int64]string
}

var _ Store = new(Map)

func NewMap(programs map[int64]string) *Map {
	m := &Map{
		programs: make(map[int64]string, len(programs)),
	}
	for id, text := range programs {
		m.programs[id] = text
	}
	return m
}

func (m *Map) Load(id int64) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.programs[id]
	return text, ok, nil
}

func (m *Map) Put(id int64, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs[id] = text
}

// Dir reads programs laid out as <root>/oeis/<id/1000>/A<id>.asm
type Dir struct {
	Root string
}

var _ Store = Dir{}

func (d Dir) Path(id int64) string {
	return filepath.Join(
		d.Root,
		"oeis",
		fmt.Sprintf("%03d", id/1000),
		fmt.Sprintf("A%06d.asm", id),
	)
}

func (d Dir) Load(id int64) (string, bool, error) {
	if id <= 0 {
		return "", false, nil
	}
	content, err := os.ReadFile(d.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(content), true, nil
}

// ParseID accepts "45", "A45" and "A000045".
func ParseID(s string) (int64, error) {
	str := strings.TrimPrefix(strings.TrimPrefix(s, "A"), "a")
	id, err := strconv.ParseInt(str, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid program id: %q", s)
	}
	return id, nil
}
