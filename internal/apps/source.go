// Package apps lists running applications and brings them to the
// foreground.
package apps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Running is one entry of a snapshot. Icon is an opaque handle owned by the
// platform layer.
type Running struct {
	Name string `toml:"name"`
	ID   string `toml:"id"`
	Icon string `toml:"icon"`
}

// Source lists the currently running applications.
type Source interface {
	List(ctx context.Context) ([]Running, error)
}

// StaticSource returns a fixed snapshot that can be replaced at any time.
type StaticSource struct {
	mu   sync.RWMutex
	apps []Running
}

// NewStaticSource returns a source listing apps.
func NewStaticSource(apps ...Running) *StaticSource {
	s := &StaticSource{}
	s.Set(apps...)
	return s
}

// Set replaces the snapshot.
func (s *StaticSource) Set(apps ...Running) {
	s.mu.Lock()
	s.apps = append([]Running(nil), apps...)
	s.mu.Unlock()
}

func (s *StaticSource) List(context.Context) ([]Running, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Running(nil), s.apps...), nil
}

type manifestFile struct {
	App []Running `toml:"app"`
}

// ManifestSource reads the snapshot from a TOML file on every List:
//
//	[[app]]
//	name = "Terminal"
//	id = "com.apple.Terminal"
//	icon = "terminal.icns"
type ManifestSource struct {
	Path string
}

func (m ManifestSource) List(ctx context.Context) ([]Running, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a TOML manifest. Entries without an id are
// rejected; a missing name defaults to the id.
func ParseManifest(data []byte) ([]Running, error) {
	var mf manifestFile
	if _, err := toml.Decode(string(data), &mf); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	out := make([]Running, 0, len(mf.App))
	for i, a := range mf.App {
		a.ID = strings.TrimSpace(a.ID)
		a.Name = strings.TrimSpace(a.Name)
		if a.ID == "" {
			return nil, fmt.Errorf("parse manifest: app %d has no id", i+1)
		}
		if a.Name == "" {
			a.Name = a.ID
		}
		out = append(out, a)
	}
	return out, nil
}

// EncodeManifest renders apps in the manifest format.
func EncodeManifest(apps []Running) ([]byte, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(manifestFile{App: apps}); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return []byte(b.String()), nil
}
