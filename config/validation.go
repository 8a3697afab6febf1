package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/grovetools/luminashot/errors"
)

var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	if !colorRegex.MatchString(c.Selection.Background) {
		return errors.ConfigInvalid(fmt.Sprintf("selection.background %q is not a #RRGGBB[AA] colour", c.Selection.Background)).
			WithDetail("field", "selection.background")
	}
	if c.Selection.BorderColor != "" && !colorRegex.MatchString(c.Selection.BorderColor) {
		return errors.ConfigInvalid(fmt.Sprintf("selection.border_color %q is not a #RRGGBB[AA] colour", c.Selection.BorderColor)).
			WithDetail("field", "selection.border_color")
	}
	if c.Selection.GracePeriod < 0 {
		return errors.ConfigInvalid("selection.grace_period must not be negative").
			WithDetail("field", "selection.grace_period")
	}

	switch c.Capture.Backend {
	case "grim", "x11":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown capture backend: %s", c.Capture.Backend)).
			WithDetail("field", "capture.backend")
	}
	switch c.Capture.Format {
	case "png", "jpeg", "ppm":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown capture format: %s", c.Capture.Format)).
			WithDetail("field", "capture.format")
	}
	if c.Capture.Backend == "x11" && c.Capture.Format != "png" {
		return errors.ConfigInvalid("the x11 backend only encodes png").
			WithDetail("field", "capture.format")
	}
	if c.Capture.Quality < 0 || c.Capture.Quality > 100 {
		return errors.ConfigInvalid("capture.quality must be between 0 and 100").
			WithDetail("field", "capture.quality")
	}
	if c.Capture.Scale < 0 {
		return errors.ConfigInvalid("capture.scale must not be negative").
			WithDetail("field", "capture.scale")
	}

	if err := validateFilenameFormat(c.Output.FilenameFormat); err != nil {
		return err
	}

	if c.Notify.Timeout < 0 {
		return errors.ConfigInvalid("notify.timeout must not be negative").
			WithDetail("field", "notify.timeout")
	}

	if strings.ContainsAny(c.Hyprland.InstanceSignature, "/\x00") {
		return errors.ConfigInvalid("hyprland.instance_signature must not contain path separators").
			WithDetail("field", "hyprland.instance_signature")
	}

	return nil
}

// validateFilenameFormat rejects layouts that would produce a path or a
// constant name.
func validateFilenameFormat(layout string) error {
	if strings.ContainsAny(layout, `/\`) {
		return errors.ConfigInvalid("output.filename_format must not contain path separators").
			WithDetail("field", "output.filename_format")
	}
	reference := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	if reference.Format(layout) == layout {
		return errors.ConfigInvalid(fmt.Sprintf("output.filename_format %q contains no time fields", layout)).
			WithDetail("field", "output.filename_format")
	}
	return nil
}
