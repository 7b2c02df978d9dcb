package config

import (
	"bytes"
	"errors"
	"io/fs"
	"io/ioutil"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if _, err := Initialize(tempDir, log.New(ioutil.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		fd.Close()

		fd, err = cfg.ReadEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("HistoryPath", func(t *testing.T) {
		assert.Equal(t, filepath.Join(tempDir, "history.db"), cfg.HistoryPath())
	})

	t.Run("AppLogPath", func(t *testing.T) {
		assert.Equal(t, filepath.Join(tempDir, AppLogName), cfg.AppLogPath())
	})

	t.Run("OpenRootFS", func(t *testing.T) {
		_, err := cfg.OpenRootFS()
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("LoadConfigFile", func(t *testing.T) {
		byFile, err := Load(filepath.Join(tempDir, ConfigurationName))
		require.NoError(t, err)
		assert.Equal(t, cfg.Hostname, byFile.Hostname)
	})
}

func TestInitialize_existing(t *testing.T) {
	memFs := afero.NewMemMapFs()
	custom := bytes.Replace(defaultConfigData, []byte("hostname: vshell"), []byte("hostname: custom"), 1)
	require.NoError(t, afero.WriteFile(memFs, "/cfg/config.yaml", custom, 0600))

	var out bytes.Buffer
	cfg, err := InitializeFs(memFs, "/cfg", log.New(&out, "", 0))
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.Hostname)
	assert.Contains(t, out.String(), "already exists")
}

func TestLoadFs_invalid(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/cfg/config.yaml", []byte("unknown_field: 1\n"), 0600))

	_, err := LoadFs(memFs, "/cfg")
	assert.ErrorContains(t, err, "parsing config.yaml")
}

func TestLoadFs_missing(t *testing.T) {
	_, err := LoadFs(afero.NewMemMapFs(), "/cfg")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadFs_rootFS(t *testing.T) {
	memFs := afero.NewMemMapFs()
	custom := bytes.Replace(defaultConfigData, []byte(`root_fs: ""`), []byte("root_fs: fs.tar"), 1)
	require.NoError(t, afero.WriteFile(memFs, "/cfg/config.yaml", custom, 0600))
	require.NoError(t, afero.WriteFile(memFs, "/cfg/fs.tar", []byte("tar"), 0600))

	cfg, err := LoadFs(memFs, "/cfg")
	require.NoError(t, err)

	fd, err := cfg.OpenRootFS()
	require.NoError(t, err)
	defer fd.Close()

	content, err := afero.ReadAll(fd)
	require.NoError(t, err)
	assert.Equal(t, "tar", string(content))
}

func TestOpenRootFS_absolute(t *testing.T) {
	memFs := afero.NewMemMapFs()
	_, err := InitializeFs(memFs, "/cfg", log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(memFs, "/images/fs.tar", []byte("image"), 0600))

	cfg, err := LoadFs(memFs, "/cfg")
	require.NoError(t, err)
	cfg.RootFS = "/images/fs.tar"

	fd, err := cfg.OpenRootFS()
	require.NoError(t, err)
	defer fd.Close()

	content, err := afero.ReadAll(fd)
	require.NoError(t, err)
	assert.Equal(t, "image", string(content))
}
