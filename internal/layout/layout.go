// Package layout describes the conventional directory structure of a LaTeX
// project built with texbuilder.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Conventional project-relative locations.
const (
	MainDocument     = "src/main.tex"
	PreambleDir      = "src/preamble"
	PackagesFile     = "src/preamble/packages.tex"
	ChaptersDir      = "src/chapters"
	IntroChapter     = "src/chapters/00-introduction.tex"
	BibliographyFile = "src/bibliography/references.bib"
	StylesDir        = "styles"
	ImagesDir        = "assets/images"
	FiguresDir       = "assets/figures"
	BuildDir         = "build"
	FixturesDir      = "tests/fixtures"
	TestDocument     = "tests/test_document.tex"
)

// Location is one conventional entry of the project layout.
type Location struct {
	Name     string
	Rel      string
	Path     string // absolute
	Dir      bool
	Required bool
}

// Layout holds the resolved locations of a project rooted at Root.
type Layout struct {
	Root      string
	Locations []Location
}

type entry struct {
	name     string
	rel      string
	dir      bool
	required bool
}

var entries = []entry{
	{"document entry point", MainDocument, false, true},
	{"preamble", PreambleDir, true, true},
	{"chapters", ChaptersDir, true, true},
	{"bibliography", BibliographyFile, false, false},
	{"styles", StylesDir, true, false},
	{"images", ImagesDir, true, false},
	{"figures", FiguresDir, true, false},
	{"build output", BuildDir, true, false},
	{"test fixtures", FixturesDir, true, false},
	{"test document", TestDocument, false, false},
}

// provisioned lists the directories setup creates.
var provisioned = []string{BuildDir, ImagesDir, FiguresDir, FixturesDir}

// Resolve returns the absolute paths of every conventional location under root.
func Resolve(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	l := &Layout{Root: abs, Locations: make([]Location, 0, len(entries))}
	for _, e := range entries {
		l.Locations = append(l.Locations, Location{
			Name:     e.name,
			Rel:      e.rel,
			Path:     filepath.Join(abs, filepath.FromSlash(e.rel)),
			Dir:      e.dir,
			Required: e.required,
		})
	}
	return l, nil
}

// Path returns the absolute path of a project-relative location.
func (l *Layout) Path(rel string) string {
	return filepath.Join(l.Root, filepath.FromSlash(rel))
}

// Status reports whether one location exists with the expected kind.
type Status struct {
	Location
	Exists bool
}

// Report is the outcome of Check.
type Report struct {
	Statuses []Status
}

// MissingRequired lists required locations that do not exist.
func (r Report) MissingRequired() []Status {
	var out []Status
	for _, s := range r.Statuses {
		if s.Required && !s.Exists {
			out = append(out, s)
		}
	}
	return out
}

// MissingOptional lists optional locations that do not exist.
func (r Report) MissingOptional() []Status {
	var out []Status
	for _, s := range r.Statuses {
		if !s.Required && !s.Exists {
			out = append(out, s)
		}
	}
	return out
}

// OK reports whether every required location is present.
func (r Report) OK() bool { return len(r.MissingRequired()) == 0 }

// Check reports which conventional locations exist under root.
func Check(root string) (Report, error) {
	l, err := Resolve(root)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Statuses: make([]Status, 0, len(l.Locations))}
	for _, loc := range l.Locations {
		fi, statErr := os.Stat(loc.Path)
		exists := statErr == nil && fi.IsDir() == loc.Dir
		rep.Statuses = append(rep.Statuses, Status{Location: loc, Exists: exists})
	}
	return rep, nil
}

// Ensure creates the directories setup provisions and returns the
// project-relative paths that did not exist before.
func Ensure(root string) ([]string, error) {
	l, err := Resolve(root)
	if err != nil {
		return nil, err
	}
	var created []string
	for _, rel := range provisioned {
		p := l.Path(rel)
		if fi, statErr := os.Stat(p); statErr == nil {
			if !fi.IsDir() {
				return created, fmt.Errorf("%s exists and is not a directory", rel)
			}
			continue
		}
		if err := os.MkdirAll(p, 0o750); err != nil {
			return created, fmt.Errorf("create %s: %w", rel, err)
		}
		created = append(created, rel)
	}
	return created, nil
}
