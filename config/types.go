package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Config is the merged luminashot configuration.
type Config struct {
	Selection SelectionConfig `yaml:"selection" toml:"selection" json:"selection" jsonschema:"description=Interactive selection (slurp) settings"`
	Capture   CaptureConfig   `yaml:"capture" toml:"capture" json:"capture" jsonschema:"description=Capture backend settings"`
	Output    OutputConfig    `yaml:"output" toml:"output" json:"output" jsonschema:"description=Where captures are saved and copied"`
	Notify    NotifyConfig    `yaml:"notify" toml:"notify" json:"notify" jsonschema:"description=Desktop notification settings"`
	Hyprland  HyprlandConfig  `yaml:"hyprland" toml:"hyprland" json:"hyprland" jsonschema:"description=Compositor IPC settings"`

	// raw holds the merged document so extensions (e.g. "logging") can be
	// decoded by the packages that own them.
	raw map[string]interface{}
}

// SelectionConfig configures the interactive selection subprocess.
type SelectionConfig struct {
	SlurpPath       string        `yaml:"slurp_path" toml:"slurp_path" json:"slurp_path" jsonschema:"description=slurp executable"`
	Background      string        `yaml:"background" toml:"background" json:"background" jsonschema:"description=Overlay background colour (#RRGGBBAA)"`
	BorderColor     string        `yaml:"border_color,omitempty" toml:"border_color,omitempty" json:"border_color,omitempty" jsonschema:"description=Selection border colour (#RRGGBBAA)"`
	GracePeriod     time.Duration `yaml:"grace_period" toml:"grace_period" json:"grace_period" jsonschema:"type=string,description=Time between SIGTERM and SIGKILL when a selection is restarted"`
	RefreshGeometry *bool         `yaml:"refresh_geometry,omitempty" toml:"refresh_geometry,omitempty" json:"refresh_geometry,omitempty" jsonschema:"description=Re-read the chosen window's geometry after selection (default: true)"`
}

// CaptureConfig configures the capture backend.
type CaptureConfig struct {
	Backend  string  `yaml:"backend" toml:"backend" json:"backend" jsonschema:"enum=grim,enum=x11,description=Capture backend"`
	GrimPath string  `yaml:"grim_path" toml:"grim_path" json:"grim_path" jsonschema:"description=grim executable"`
	Format   string  `yaml:"format" toml:"format" json:"format" jsonschema:"enum=png,enum=jpeg,enum=ppm,description=Encoded image format"`
	Quality  int     `yaml:"quality,omitempty" toml:"quality,omitempty" json:"quality,omitempty" jsonschema:"minimum=0,maximum=100,description=JPEG quality"`
	Scale    float64 `yaml:"scale,omitempty" toml:"scale,omitempty" json:"scale,omitempty" jsonschema:"description=Output scale factor passed to grim -s"`
	Cursor   bool    `yaml:"cursor,omitempty" toml:"cursor,omitempty" json:"cursor,omitempty" jsonschema:"description=Include the pointer in the capture"`
}

// OutputConfig configures the save and copy actions.
type OutputConfig struct {
	Directory      string `yaml:"directory" toml:"directory" json:"directory" jsonschema:"description=Directory captures are saved to (default: $XDG_PICTURES_DIR/Screenshots)"`
	FilenameFormat string `yaml:"filename_format" toml:"filename_format" json:"filename_format" jsonschema:"description=Go time layout for file names"`
	WlCopyPath     string `yaml:"wl_copy_path" toml:"wl_copy_path" json:"wl_copy_path" jsonschema:"description=wl-copy executable"`
}

// NotifyConfig configures desktop notifications.
type NotifyConfig struct {
	Enabled *bool         `yaml:"enabled,omitempty" toml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"description=Send a notification after a capture (default: true)"`
	Path    string        `yaml:"path" toml:"path" json:"path" jsonschema:"description=notify-send executable"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout" json:"timeout" jsonschema:"type=string,description=Bound on the notify-send call"`
}

// HyprlandConfig locates the compositor sockets.
type HyprlandConfig struct {
	InstanceSignature string `yaml:"instance_signature,omitempty" toml:"instance_signature,omitempty" json:"instance_signature,omitempty" jsonschema:"description=Overrides $HYPRLAND_INSTANCE_SIGNATURE"`
	RuntimeDir        string `yaml:"runtime_dir,omitempty" toml:"runtime_dir,omitempty" json:"runtime_dir,omitempty" jsonschema:"description=Overrides $XDG_RUNTIME_DIR"`
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Selection.SlurpPath == "" {
		c.Selection.SlurpPath = "slurp"
	}
	if c.Selection.Background == "" {
		c.Selection.Background = "#FFFFFF44"
	}
	if c.Selection.GracePeriod == 0 {
		c.Selection.GracePeriod = 200 * time.Millisecond
	}
	if c.Selection.RefreshGeometry == nil {
		c.Selection.RefreshGeometry = boolPtr(true)
	}

	if c.Capture.Backend == "" {
		c.Capture.Backend = "grim"
	}
	if c.Capture.GrimPath == "" {
		c.Capture.GrimPath = "grim"
	}
	if c.Capture.Format == "" {
		c.Capture.Format = "png"
	}

	if c.Output.FilenameFormat == "" {
		c.Output.FilenameFormat = "2006-01-02_15-04-05"
	}
	if c.Output.WlCopyPath == "" {
		c.Output.WlCopyPath = "wl-copy"
	}

	if c.Notify.Enabled == nil {
		c.Notify.Enabled = boolPtr(true)
	}
	if c.Notify.Path == "" {
		c.Notify.Path = "notify-send"
	}
	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = 5 * time.Second
	}
}

// NotificationsEnabled reports the effective notify.enabled value.
func (c *Config) NotificationsEnabled() bool {
	return c.Notify.Enabled == nil || *c.Notify.Enabled
}

// RefreshGeometry reports the effective selection.refresh_geometry value.
func (c *Config) RefreshGeometry() bool {
	return c.Selection.RefreshGeometry == nil || *c.Selection.RefreshGeometry
}

// FileExtension returns the extension matching capture.format.
func (c *Config) FileExtension() string {
	if c.Capture.Format == "jpeg" {
		return "jpg"
	}
	return c.Capture.Format
}

// UnmarshalExtension decodes a top-level section this package does not own.
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	section, ok := c.raw[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	if err := decode(section, target); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}
	return nil
}

// decode converts a generic document into a typed struct using yaml tags.
func decode(input interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	return decoder.Decode(input)
}

func boolPtr(b bool) *bool {
	return &b
}
