package config

import (
	"fmt"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
)

// Validate checks invariants that must hold before any external tool runs.
func (c *Config) Validate() error {
	switch c.Toolchain.Mode {
	case ModeDocker, ModeLocal:
	default:
		return tberrors.ValidationFailed("toolchain.mode", fmt.Sprintf("unsupported value %q (want docker or local)", c.Toolchain.Mode))
	}
	if c.Toolchain.MaxPasses < 1 {
		return tberrors.ValidationFailed("toolchain.max_passes", "must be >= 1")
	}
	if c.Toolchain.Mode == ModeDocker && c.Toolchain.Image == "" {
		return tberrors.ValidationFailed("toolchain.image", "required in docker mode")
	}
	if c.Watch.Debounce <= 0 {
		return tberrors.ValidationFailed("watch.debounce", "must be > 0")
	}
	if c.Watch.MaxDelay < c.Watch.Debounce {
		return tberrors.ValidationFailed("watch.max_delay", "must not be shorter than watch.debounce")
	}
	if v := c.Lint.Verbosity(); v < 0 || v > 3 {
		return tberrors.ValidationFailed("lint.chktex_verbosity", "must be between 0 and 3")
	}
	return nil
}
