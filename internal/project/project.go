// Package project holds a project: its name, its directory and the System of
// boards it is built from, and runs the operations a user performs on it.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/iron-coder/ironcoder/internal/board"
	"github.com/iron-coder/ironcoder/internal/config"
	"github.com/iron-coder/ironcoder/internal/facts"
	"github.com/iron-coder/ironcoder/internal/fsutil"
	"github.com/iron-coder/ironcoder/internal/logging"
	"github.com/iron-coder/ironcoder/internal/rustsyntax"
	"github.com/iron-coder/ironcoder/internal/system"
	"github.com/iron-coder/ironcoder/internal/toolchain"
	"github.com/iron-coder/ironcoder/internal/validator"
)

// Project is one project. Terminal collects everything the user should see:
// info and warning log lines and toolchain output.
type Project struct {
	Name string
	// Location is the project directory, empty until saved or loaded
	Location string
	System   *system.System
	Terminal *logging.Terminal

	cfg       *config.Config
	catalog   *board.Catalog
	logger    *zap.SugaredLogger
	parser    *rustsyntax.Parser
	validator *validator.Validator
	job       *toolchain.Job
}

// Options are the collaborators shared by every project. Zero values are
// replaced with defaults.
type Options struct {
	Config    *config.Config
	Catalog   *board.Catalog
	Logger    *zap.SugaredLogger
	Parser    *rustsyntax.Parser
	Validator *validator.Validator
}

// New creates an empty project with no location
func New(name string, opts Options) (*Project, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Parser == nil {
		opts.Parser = rustsyntax.New()
	}
	if opts.Validator == nil {
		v, err := validator.New()
		if err != nil {
			return nil, fmt.Errorf("creating validator: %w", err)
		}
		opts.Validator = v
	}
	term := &logging.Terminal{}
	return &Project{
		Name:      name,
		System:    &system.System{},
		Terminal:  term,
		cfg:       opts.Config,
		catalog:   opts.Catalog,
		logger:    logging.Tee(opts.Logger, term),
		parser:    opts.Parser,
		validator: opts.Validator,
	}, nil
}

// Load opens the project saved in dir
func Load(dir string, opts Options) (*Project, error) {
	p, err := New("", opts)
	if err != nil {
		return nil, err
	}
	if err := p.loadFrom(dir); err != nil {
		return nil, err
	}
	return p, nil
}

// HasMainBoard reports whether the system has a main board
func (p *Project) HasMainBoard() bool {
	return p.System.HasMainBoard()
}

// AddBoard adds a copy of b to the system
func (p *Project) AddBoard(b *board.Board) (system.BoardID, error) {
	id, err := p.System.AddBoard(b.Clone())
	switch {
	case errors.Is(err, system.ErrMainBoardExists):
		p.logger.Infow("project already contains a main board", "project", p.Name, "board", b.Name())
	case errors.Is(err, system.ErrDuplicateBoard):
		p.logger.Infow("project already contains that board", "project", p.Name, "board", b.Name())
	case err == nil:
		p.logger.Debugw("added board", "project", p.Name, "board", b.Name(), "id", id)
	}
	return id, err
}

// RemoveBoard removes a board and every connection that references it
func (p *Project) RemoveBoard(id system.BoardID) error {
	b, _ := p.System.Lookup(id)
	removed, err := p.System.RemoveBoard(id)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		p.logger.Infow("removed connections with board", "board", b.Name(), "connections", len(removed))
	}
	return nil
}

// Connect joins two boards in the system over iface
func (p *Project) Connect(main, secondary system.BoardID, iface board.Interface) error {
	if _, err := p.System.Connect(main, secondary, iface); err != nil {
		return err
	}
	p.logger.Debugw("connected boards", "main", main, "secondary", secondary, "interface", iface.String())
	return nil
}

// Save writes the project file into Location
func (p *Project) Save() error {
	if p.Location == "" {
		return ErrNoProjectDirectory
	}
	m := toManifest(p.Name, p.System)
	if err := p.validator.ValidateProjectManifest(m); err != nil {
		return fmt.Errorf("project manifest: %w", err)
	}
	data, err := encodeManifest(m)
	if err != nil {
		return fmt.Errorf("encoding project manifest: %w", err)
	}

	path := filepath.Join(p.Location, ManifestFile)
	p.logger.Infow("saving project file", "path", path)
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// SaveAs sets the project location to dir, or to a new dir/<name> folder
// when createContainingFolder is set, and saves. An existing project file in
// the target is never overwritten.
func (p *Project) SaveAs(dir string, createContainingFolder bool) error {
	if createContainingFolder {
		dir = filepath.Join(dir, p.Name)
		if err := os.Mkdir(dir, 0o755); err != nil {
			return fmt.Errorf("creating project folder: %w", err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
		p.logger.Warnw("you might be overwriting an existing project, not saving", "dir", dir)
		return fmt.Errorf("%w: %s", ErrWouldOverwrite, dir)
	}
	p.Location = dir
	return p.Save()
}

// Reload reads the project file from Location again. Changes made on disk
// since the last load are logged.
func (p *Project) Reload() error {
	if p.Location == "" {
		return ErrNoProjectDirectory
	}
	before := facts.BuildTables(p.System)
	if err := p.loadFrom(p.Location); err != nil {
		return err
	}
	delta := facts.ComputeDelta(before, facts.BuildTables(p.System))
	if !delta.Empty() {
		p.logger.Infow("project changed on disk",
			"boards_added", len(delta.Added.Boards),
			"boards_removed", len(delta.Removed.Boards),
			"connections_added", len(delta.Added.Connections),
			"connections_removed", len(delta.Removed.Connections),
		)
	}
	return nil
}

func (p *Project) loadFrom(dir string) error {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warnw("error reading project file", "path", path, "error", err)
		return fmt.Errorf("reading project file: %w", err)
	}
	m, err := decodeManifest(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLoadManifest, path, err)
	}
	if err := p.validator.ValidateProjectManifest(m); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLoadManifest, path, err)
	}

	p.logger.Debugw("updating project boards from the catalog", "boards", len(m.Boards))
	sys, err := m.system(p.catalog, func(name string) {
		p.logger.Warnw("could not find project board in the catalog; was the project made with another board set?", "board", name)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLoadManifest, path, err)
	}

	p.Name = m.Name
	p.Location = dir
	p.System = sys
	if dangling := sys.DanglingConnections(); len(dangling) > 0 {
		p.logger.Warnw("project has connections to boards that are not in it", "connections", len(dangling))
	}
	return nil
}

// NewFile creates an empty file at rel inside the project directory
func (p *Project) NewFile(rel string) error {
	if p.Location == "" {
		p.logger.Info("must save project before adding files")
		return ErrNoProjectDirectory
	}
	path := filepath.Join(p.Location, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Facts flattens the current system into fact rows
func (p *Project) Facts() facts.Tables {
	return facts.BuildTables(p.System)
}
