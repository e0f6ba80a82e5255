// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package companion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// MappingsFile is the default file name for locally stored mappings.
const MappingsFile = "companion.toml"

type mappingsDoc struct {
	HDMI Mappings `toml:"hdmi"`
}

// FileStore keeps mappings in a TOML file, one [hdmi.N] table per input.
type FileStore struct {
	fs   afero.Fs
	path string
}

func NewFileStore(fsys afero.Fs, path string) *FileStore {
	return &FileStore{fs: fsys, path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load reads the file. A missing file yields empty mappings. Entries that
// fail validation are dropped with a warning.
func (s *FileStore) Load(_ context.Context) (Mappings, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Mappings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file: %w", err)
	}

	var doc mappingsDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mappings file: %w", err)
	}

	out := make(Mappings, len(doc.HDMI))
	for k, d := range doc.HDMI {
		if _, err := ParseHDMIKey(k); err != nil {
			log.Warn().Err(err).Str("file", s.path).Msg("skipping mapping")
			continue
		}
		if err := d.Validate(); err != nil {
			log.Warn().Err(err).Str("hdmi", k).Str("file", s.path).Msg("skipping mapping")
			continue
		}
		out[k] = d
	}
	return out, nil
}

// Save validates m and writes it, creating the parent directory if needed.
func (s *FileStore) Save(_ context.Context, m Mappings) error {
	if err := m.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(mappingsDoc{HDMI: m})
	if err != nil {
		return fmt.Errorf("failed to marshal mappings: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create mappings directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write mappings file: %w", err)
	}
	return nil
}
