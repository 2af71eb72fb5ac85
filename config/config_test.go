package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blockreel")

	s := Load(dir)

	assert.Equal(t, defaultSettings(), s)

	// The first load should leave a conf file behind
	_, err := os.Stat(filepath.Join(dir, "blockreel.conf"))
	require.NoError(t, err)

	assert.Equal(t, defaultSettings(), Load(dir))
}

func TestLoadReadsValues(t *testing.T) {
	dir := t.TempDir()
	conf := "buffer_frames = 12\nvolume = 0.5\nloop = true\nmute = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blockreel.conf"), []byte(conf), 0644))

	s := Load(dir)

	assert.Equal(t, 12, s.BufferFrames)
	assert.Equal(t, 0.5, s.Volume)
	assert.True(t, s.Loop)
	assert.True(t, s.Mute)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	dir := t.TempDir()
	conf := "buffer_frames = lots\nvolume = -3\nloop = yes\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blockreel.conf"), []byte(conf), 0644))

	s := Load(dir)

	assert.Equal(t, 0, s.BufferFrames)
	assert.Equal(t, 1.0, s.Volume)
	assert.False(t, s.Loop)
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	conf := "# a comment\n\n  # indented comment\nvolume = 0.25\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blockreel.conf"), []byte(conf), 0644))

	assert.Equal(t, 0.25, Load(dir).Volume)
}

func TestWriteConfRoundTrips(t *testing.T) {
	dir := t.TempDir()
	want := Settings{BufferFrames: 30, Volume: 0.75, Loop: true, Mute: false}

	require.NoError(t, writeConf(filepath.Join(dir, "blockreel.conf"), want))

	assert.Equal(t, want, Load(dir))
}
