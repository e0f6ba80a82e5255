// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package companion

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mappingsPath = "/config/prism/companion.toml"

func TestFileStoreMissingFile(t *testing.T) {
	t.Parallel()

	s := NewFileStore(afero.NewMemMapFs(), mappingsPath)
	m, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestFileStoreSaveLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewFileStore(fs, mappingsPath)
	ctx := context.Background()

	want := Mappings{"1": livingRoom, "4": bedroom}
	require.NoError(t, s.Save(ctx, want))

	data, err := afero.ReadFile(fs, mappingsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[hdmi.1]")
	assert.Contains(t, string(data), "192.168.1.40")

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreSkipsInvalidEntries(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	doc := `
[hdmi.1]
ip = "192.168.1.40"
name = "Living Room"

[hdmi.7]
ip = "192.168.1.41"

[hdmi.2]
name = "No Address"

[hdmi.3]
ip = "roku-bedroom.local"
`
	require.NoError(t, afero.WriteFile(fs, mappingsPath, []byte(doc), 0o600))

	got, err := NewFileStore(fs, mappingsPath).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, got.Inputs())
	assert.Equal(t, "Living Room", got["1"].Name)
}

func TestFileStoreRejectsInvalidSave(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewFileStore(fs, mappingsPath)

	require.Error(t, s.Save(context.Background(), Mappings{"9": livingRoom}))
	exists, err := afero.Exists(fs, mappingsPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStoreMalformed(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, mappingsPath, []byte("[hdmi.1\nip="), 0o600))

	_, err := NewFileStore(fs, mappingsPath).Load(context.Background())
	require.Error(t, err)
}
