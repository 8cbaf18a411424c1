package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const exampleConfig = `# texbuilder project configuration.
# Every key is optional; the values below are the defaults.

document:
  source: src/main.tex
  output: build

toolchain:
  mode: docker            # docker | local
  image: texlive/texlive:latest-full
  max_passes: 5           # latexmk $max_repeat
  # workdir: .           # project root, relative to the current directory

watch:
  debounce: 1s
  max_delay: 10s
  dirs: [src, styles, assets]
  extensions: [.tex, .bib, .sty, .cls]
  initial_build: true

lint:
  chktex_verbosity: 1
  lacheck: false

test:
  document: tests/test_document.tex

logging:
  level: info             # debug | info | warn | error
  format: text            # text | json
`

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
