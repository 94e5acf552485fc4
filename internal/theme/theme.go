package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// importRegex matches @import "file.css"; @import 'file.css'; and
// @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// ErrThemeNotFound is returned when a theme exists neither in the user
// themes directory nor among the bundled themes.
var ErrThemeNotFound = errors.New("theme not found")

// Theme is a resolved CSS theme.
type Theme struct {
	Name    string   // Theme name (without .css extension)
	Path    string   // Full path of a user theme; empty for bundled themes
	CSS     string   // CSS with imports inlined
	Files   []string // Files on disk the CSS was built from, for watching
	Bundled bool
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "snackbar", "themes"), nil
}

// Resolve finds a theme by name. A file named <name>.css in themesDir
// overrides the bundled theme of the same name.
func Resolve(name, themesDir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	if themesDir != "" {
		themePath := filepath.Join(themesDir, name+".css")
		if _, err := os.Stat(themePath); err == nil {
			return NewTheme(name, themePath)
		}
	}

	css, found := GetEmbeddedTheme(name)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	r := newImportResolver()
	return &Theme{
		Name:    name,
		CSS:     r.process(css, themesDir),
		Files:   r.files(),
		Bundled: true,
	}, nil
}

// NewTheme loads a user theme from path, inlining its imports.
func NewTheme(name, path string) (*Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}

	r := newImportResolver()
	r.seen[path] = true
	processed := r.process(string(css), filepath.Dir(path))

	return &Theme{
		Name:  name,
		Path:  path,
		CSS:   processed,
		Files: append([]string{path}, r.files()...),
	}, nil
}

// NewDefaultTheme creates the embedded default theme.
func NewDefaultTheme() *Theme {
	t, err := Resolve(DefaultThemeName, "")
	if err != nil {
		return &Theme{Name: DefaultThemeName, Bundled: true}
	}
	return t
}

// Reload re-reads a user theme and its imports. It reports whether the
// resulting CSS changed.
func (t *Theme) Reload() (bool, error) {
	if t.Bundled {
		return false, nil
	}

	fresh, err := NewTheme(t.Name, t.Path)
	if err != nil {
		return false, err
	}

	changed := fresh.CSS != t.CSS
	t.CSS = fresh.CSS
	t.Files = fresh.Files
	return changed, nil
}

// ProcessImports resolves and inlines @import statements in css relative to
// baseDir. The seen map prevents circular imports; nil starts a fresh one.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	r := newImportResolver()
	if seen != nil {
		r.seen = seen
	}
	return r.process(css, baseDir)
}

type importResolver struct {
	seen   map[string]bool
	onDisk map[string]bool
}

func newImportResolver() *importResolver {
	return &importResolver{
		seen:   make(map[string]bool),
		onDisk: make(map[string]bool),
	}
}

func (r *importResolver) process(css, baseDir string) string {
	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		return r.inline(submatch[1], baseDir)
	})
}

// inline returns the CSS for one import. Files on disk win; unresolvable
// imports fall back to bundled partials and themes of the same name.
func (r *importResolver) inline(importPath, baseDir string) string {
	fullPath := importPath
	if !filepath.IsAbs(importPath) {
		fullPath = filepath.Join(baseDir, importPath)
	}

	if r.seen[fullPath] {
		return "/* circular import prevented: " + importPath + " */"
	}
	r.seen[fullPath] = true

	// Relative imports of bundled CSS without a base directory only resolve
	// to bundled files
	var data []byte
	err := os.ErrNotExist
	if baseDir != "" || filepath.IsAbs(importPath) {
		data, err = os.ReadFile(fullPath)
	}
	if err == nil {
		r.onDisk[fullPath] = true
		return "/* imported: " + importPath + " */\n" + r.process(string(data), filepath.Dir(fullPath))
	}

	base := filepath.Base(importPath)
	if strings.HasPrefix(base, "_") {
		if css, found := GetEmbeddedPartial(base); found {
			return "/* imported (embedded): " + importPath + " */\n" + css
		}
	}
	if css, found := GetEmbeddedTheme(strings.TrimSuffix(base, ".css")); found {
		return "/* imported (embedded): " + importPath + " */\n" + r.process(css, baseDir)
	}
	return "/* import failed: " + importPath + " - " + err.Error() + " */"
}

func (r *importResolver) files() []string {
	files := make([]string, 0, len(r.onDisk))
	for f := range r.onDisk {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}

// ListAvailableThemes lists bundled themes followed by user themes in
// themesDir. A user theme shadowing a bundled one is listed once, with its
// path.
func ListAvailableThemes(themesDir string) ([]ThemeInfo, error) {
	index := make(map[string]int)
	var themes []ThemeInfo

	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if themesDir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, fmt.Errorf("failed to read themes directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		themeName := strings.TrimSuffix(name, ".css")
		path := filepath.Join(themesDir, name)
		if i, ok := index[themeName]; ok {
			themes[i].Path = path
			continue
		}
		index[themeName] = len(themes)
		themes = append(themes, ThemeInfo{Name: themeName, Path: path})
	}

	return themes, nil
}
