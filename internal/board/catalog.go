package board

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iron-coder/ironcoder/internal/config"
	"github.com/iron-coder/ironcoder/internal/validator"
)

// Catalog is the list of known boards, sorted by manufacturer then name
type Catalog struct {
	Boards []*Board
}

// Find returns the first board with the given name
func (c *Catalog) Find(name string) (*Board, bool) {
	if c == nil {
		return nil, false
	}
	for _, b := range c.Boards {
		if b.Manifest.Name == name {
			return b, true
		}
	}
	return nil, false
}

// MainBoards returns the boards that can run code
func (c *Catalog) MainBoards() []*Board {
	var out []*Board
	for _, b := range c.Boards {
		if b.IsMainBoard() {
			out = append(out, b)
		}
	}
	return out
}

// LoadOptions configures LoadCatalog. Zero values fall back to defaults.
type LoadOptions struct {
	Config    *config.Config
	Validator *validator.Validator
	Logger    *zap.SugaredLogger
}

// LoadCatalog loads every manifest under boardsDir. Boards that fail to load
// are reported in the returned error, which aggregates one error per file;
// the boards that did load are always returned.
func LoadCatalog(boardsDir string, opts LoadOptions) (*Catalog, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	v := opts.Validator
	if v == nil {
		var err error
		if v, err = validator.New(); err != nil {
			return nil, fmt.Errorf("creating validator: %w", err)
		}
	}

	if info, err := os.Stat(boardsDir); err != nil {
		return nil, fmt.Errorf("boards directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("boards directory: %s is not a directory", boardsDir)
	}

	files, err := cfg.ResolveManifests(boardsDir)
	if err != nil {
		return nil, fmt.Errorf("resolving manifests: %w", err)
	}

	cat := &Catalog{}
	var errs error
	seen := make(map[string]string)
	for _, path := range files {
		b, err := LoadBoard(path, v)
		if err != nil {
			logger.Warnw("error loading board", "path", path, "error", err)
			errs = multierr.Append(errs, err)
			continue
		}
		if prev, ok := seen[b.Manifest.Name]; ok {
			logger.Warnw("duplicate board name, boards will collide", "name", b.Manifest.Name, "path", path, "first", prev)
		} else {
			seen[b.Manifest.Name] = path
		}
		logger.Debugw("loaded board", "name", b.Manifest.Name, "bsp", b.Manifest.BSP, "local_bsp", b.BSPDir != "")
		cat.Boards = append(cat.Boards, b)
	}

	sort.SliceStable(cat.Boards, func(i, j int) bool {
		a, b := cat.Boards[i].Manifest, cat.Boards[j].Manifest
		if a.Manufacturer != b.Manufacturer {
			return a.Manufacturer < b.Manufacturer
		}
		return a.Name < b.Name
	})

	logger.Infow("loaded board catalog", "dir", boardsDir, "boards", len(cat.Boards), "errors", len(multierr.Errors(errs)))
	return cat, errs
}

// LoadBoard decodes one manifest and discovers its sibling assets
func LoadBoard(path string, v *validator.Validator) (*Board, error) {
	m, err := DecodeManifest(path)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if err := v.ValidateBoardManifest(m); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b := &Board{Manifest: *m, ManifestPath: abs}
	discoverAssets(b)
	return b, nil
}

// DecodeManifest reads a board manifest. Unknown keys are an error.
func DecodeManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

func discoverAssets(b *Board) {
	dir := filepath.Dir(b.ManifestPath)
	stem := strings.TrimSuffix(filepath.Base(b.ManifestPath), filepath.Ext(b.ManifestPath))

	for _, ext := range []string{".svg", ".png"} {
		candidate := filepath.Join(dir, stem+ext)
		if isFile(candidate) {
			b.ImagePath = candidate
			break
		}
	}

	if entries, err := os.ReadDir(filepath.Join(dir, "examples")); err == nil {
		for _, e := range entries {
			b.Examples = append(b.Examples, filepath.Join(dir, "examples", e.Name()))
		}
	}

	if template := filepath.Join(dir, "template"); isDir(template) {
		b.TemplateDir = template
	}
	if bspDir := filepath.Join(dir, "bsp"); isDir(bspDir) {
		b.BSPDir = bspDir
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
