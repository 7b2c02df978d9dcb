package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	AppLogName        = "app.log"
)

// Node types accepted in the filesystem section.
const (
	NodeFile = "file"
	NodeDir  = "dir"
)

type Configuration struct {
	// baseFs is the filesystem the configuration was loaded from, configFs is
	// the configuration directory inside it.
	baseFs    afero.Fs
	configFs  afero.Fs
	configDir string

	Hostname string `json:"hostname" validate:"required,hostname_rfc1123"`
	Motd     string `json:"motd"`
	Prompt   string `json:"prompt"`

	User  User          `json:"user"`
	Users []PasswdEntry `json:"users" validate:"required,unique=Username,dive"`

	OS      OS      `json:"os"`
	Uname   Uname   `json:"uname"`
	History History `json:"history"`
	Follow  Follow  `json:"follow"`

	EventLog string `json:"event_log"`
	RootFS   string `json:"root_fs"`

	Filesystem []Node `json:"filesystem" validate:"dive"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	validate.RegisterValidation("perm", func(fl validator.FieldLevel) bool {
		return vfs.ValidPerm(fl.Field().String())
	})
	validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})

	if err := validate.Struct(c); err != nil {
		return err
	}

	if _, ok := c.LookupUser(c.User.Username); !ok {
		return fmt.Errorf("user %q has no entry in users", c.User.Username)
	}
	return nil
}

// User is the account sessions run as.
type User struct {
	Username string `json:"username" validate:"required"`
	Group    string `json:"group" validate:"required"`
	Home     string `json:"home" validate:"required,startswith=/"`
	Shell    string `json:"shell" validate:"required"`
}

// PasswdEntry is a line of /etc/passwd.
type PasswdEntry struct {
	Username string `json:"username" validate:"required,excludesall=:"`
	UID      int    `json:"uid" validate:"gte=0"`
	GID      int    `json:"gid" validate:"gte=0"`
	Home     string `json:"home" validate:"required,startswith=/"`
	Shell    string `json:"shell" validate:"required"`
}

type OS struct {
	DefaultPath string `json:"default_path" validate:"required"`
}

type Uname struct {
	KernelName       string `json:"kernel_name" validate:"required"`       // Kernel Name name e.g. "Linux".
	KernelRelease    string `json:"kernel_release" validate:"required"`    // OS release e.g. "5.10.0-21-amd64"
	KernelVersion    string `json:"kernel_version" validate:"required"`    // OS version e.g. "#1 SMP Debian 5.10.162-1 (2023-01-21)"
	HardwarePlatform string `json:"hardware_platform" validate:"required"` // Machnine name e.g. "x86_64"
	MemTotalKB       int64  `json:"mem_total_kb" validate:"gt=0"`
}

type History struct {
	// Path of the history database, empty to keep history in memory.
	Path       string `json:"path"`
	MaxEntries int    `json:"max_entries" validate:"gte=0"`
}

type Follow struct {
	PollRate      string `json:"poll_rate" validate:"required,duration"`
	MaxIterations int    `json:"max_iterations" validate:"gte=1"`
}

// PollInterval parses PollRate, it's only valid after Validate succeeds.
func (f Follow) PollInterval() time.Duration {
	d, _ := time.ParseDuration(f.PollRate)
	return d
}

// Node is an extra file or directory added to the simulated filesystem.
type Node struct {
	Path    string `json:"path" validate:"required,startswith=/"`
	Type    string `json:"type" validate:"oneof=file dir"`
	Content string `json:"content"`
	Owner   string `json:"owner"`
	Group   string `json:"group"`
	Perm    string `json:"perm" validate:"omitempty,perm"`
}

// LookupUser finds the passwd entry for username.
func (c *Configuration) LookupUser(username string) (PasswdEntry, bool) {
	for _, u := range c.Users {
		if u.Username == username {
			return u, true
		}
	}
	return PasswdEntry{}, false
}

// fs returns the filesystem to open name on. Relative names are inside the
// configuration directory.
func (c *Configuration) fs(name string) afero.Fs {
	if filepath.IsAbs(name) {
		return c.baseFs
	}
	return c.configFs
}

// resolve returns the on-disk path of name inside the configuration directory.
func (c *Configuration) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.configDir, name)
}

// AppLogPath is where diagnostics are written for interactive sessions.
func (c *Configuration) AppLogPath() string {
	return c.resolve(AppLogName)
}

// HistoryPath returns the history database location, or an empty string if
// history is kept in memory.
func (c *Configuration) HistoryPath() string {
	if c.History.Path == "" {
		return ""
	}
	return c.resolve(c.History.Path)
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, fmt.Errorf("event log: %w", os.ErrNotExist)
	}
	return c.fs(c.EventLog).OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, fmt.Errorf("event log: %w", os.ErrNotExist)
	}
	return c.fs(c.EventLog).OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

// OpenRootFS opens the archive unpacked over the base filesystem.
func (c *Configuration) OpenRootFS() (afero.File, error) {
	if c.RootFS == "" {
		return nil, fmt.Errorf("root_fs: %w", os.ErrNotExist)
	}
	return c.fs(c.RootFS).Open(c.RootFS)
}

// Default returns the built in configuration backed by an in-memory
// directory.
func Default() *Configuration {
	out := defaultConfig()
	out.baseFs = afero.NewMemMapFs()
	out.configFs = out.baseFs
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
