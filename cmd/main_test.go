package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/Alisser2001/sentinel/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpAndUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 0, run([]string{"help"}, &out, &errOut))
	assert.Contains(t, out.String(), "sentinel batch")

	out.Reset()
	assert.Equal(t, 1, run([]string{"frobnicate"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "unknown command: frobnicate")
}

func TestBadFlagExitsNonZero(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run([]string{"batch", "-n", "many"}, &out, &errOut))
}

func TestBatchUnknownFormat(t *testing.T) {
	var out, errOut bytes.Buffer
	dir := t.TempDir()
	code := run([]string{"batch", "-config", dir, "-format", "xml"}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unknown output format")
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join("/cfg", ".sentinel")

	cfg, err := loadConfig(fs, options{configDir: dir, interval: 4 * time.Second, user: "alice", sort: "pid"})
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, cfg.Interval)
	assert.Equal(t, "alice", cfg.FilterUser)
	assert.Equal(t, "pid", cfg.SortField)

	_, err = loadConfig(fs, options{configDir: dir, sort: "tty"})
	assert.ErrorIs(t, err, config.ErrInvalid)
}
