package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iron-coder/ironcoder/internal/board"
	"github.com/iron-coder/ironcoder/internal/bsp"
	"github.com/iron-coder/ironcoder/internal/config"
	"github.com/iron-coder/ironcoder/internal/facts"
	"github.com/iron-coder/ironcoder/internal/logging"
	"github.com/iron-coder/ironcoder/internal/project"
	"github.com/iron-coder/ironcoder/internal/rustsyntax"
	"github.com/iron-coder/ironcoder/internal/validator"
)

const configFile = "ironcoder.json"

// pollInterval is how often a running toolchain job is drained
const pollInterval = 50 * time.Millisecond

// env is what every action needs: configuration, a logger and the shared
// parser and validator.
type env struct {
	cfg       *config.Config
	logger    *zap.SugaredLogger
	parser    *rustsyntax.Parser
	validator *validator.Validator
}

func newEnv(c *cli.Context) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String(flagConfig); path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	} else {
		cfg, err = config.Load(".")
		if err != nil {
			fmt.Fprintf(c.App.ErrWriter, "Warning: Could not load config: %v (using defaults)\n", err)
			cfg = config.DefaultConfig()
		}
	}
	if dir := c.String(flagBoardsDir); dir != "" {
		cfg.BoardsDir = dir
	}
	if lvl := c.String(flagLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	if format := c.String(flagLogFormat); format != "" {
		cfg.Log.Format = format
	}

	errWriter := c.App.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, errWriter)
	if err != nil {
		return nil, err
	}
	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}
	return &env{cfg: cfg, logger: logger, parser: rustsyntax.New(), validator: v}, nil
}

// catalog loads the board catalog. Boards that fail to load are logged and
// skipped; an unreadable catalog directory gives an empty catalog.
func (e *env) catalog() *board.Catalog {
	cat, err := board.LoadCatalog(e.cfg.BoardsDir, board.LoadOptions{
		Config:    e.cfg,
		Validator: e.validator,
		Logger:    e.logger,
	})
	if cat == nil {
		e.logger.Warnw("board catalog unavailable", "dir", e.cfg.BoardsDir, "error", err)
		return &board.Catalog{}
	}
	for _, boardErr := range multierr.Errors(err) {
		e.logger.Debugw("skipped board", "error", boardErr)
	}
	return cat
}

func (e *env) options(cat *board.Catalog) project.Options {
	return project.Options{
		Config:    e.cfg,
		Catalog:   cat,
		Logger:    e.logger,
		Parser:    e.parser,
		Validator: e.validator,
	}
}

// openProject loads the project named by --project
func openProject(c *cli.Context) (*env, *project.Project, error) {
	e, err := newEnv(c)
	if err != nil {
		return nil, nil, err
	}
	p, err := project.Load(c.String(flagProject), e.options(e.catalog()))
	if err != nil {
		return nil, nil, err
	}
	return e, p, nil
}

func findBoard(cat *board.Catalog, name string) (*board.Board, error) {
	b, ok := cat.Find(name)
	if !ok {
		return nil, fmt.Errorf("no board named %q in the catalog", name)
	}
	return b, nil
}

func writeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func InitAction(c *cli.Context) error {
	if _, err := os.Stat(configFile); err == nil && !c.Bool(flagForce) {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", configFile)
	}
	if err := config.DefaultConfig().Save(configFile); err != nil {
		return fmt.Errorf("creating config: %w", err)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Created %s\n", configFile)
	fmt.Fprintln(w, "\nEdit this file to configure:")
	fmt.Fprintln(w, "  - The board catalog location and manifest patterns")
	fmt.Fprintln(w, "  - The cargo build and flash arguments")
	fmt.Fprintln(w, "  - System rule severities")
	return nil
}

func BoardsAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	cat := e.catalog()
	boards := cat.Boards
	if c.Bool(flagMain) {
		boards = cat.MainBoards()
	}

	if c.Bool(flagJSON) {
		manifests := make([]board.Manifest, 0, len(boards))
		for _, b := range boards {
			manifests = append(manifests, b.Manifest)
		}
		return writeJSON(c.App.Writer, manifests)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MANUFACTURER\tNAME\tMAIN\tSTANDARD\tBSP\tLOCAL BSP")
	for _, b := range boards {
		m := b.Manifest
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\t%t\n", m.Manufacturer, m.Name, m.IsMainBoard, m.Standard, m.BSP, b.BSPDir != "")
	}
	return tw.Flush()
}

// crateDir adapts a bare crate directory to bsp.Source
type crateDir struct {
	crate, dir string
}

func (s crateDir) Name() string     { return s.crate }
func (s crateDir) BSPCrate() string { return s.crate }
func (s crateDir) BSPPath() string  { return s.dir }

func BSPAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("bsp takes exactly one crate directory")
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	dir := c.Args().First()
	crate := c.String(flagCrate)
	if crate == "" {
		crate = filepath.Base(filepath.Clean(dir))
	}

	info, err := bsp.Analyze(crateDir{crate: crate, dir: dir}, e.parser, e.logger)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "crate:        %s\n", info.Crate)
	fmt.Fprintf(w, "use:          use %s;\n", info.Use)
	if !info.HasBoard() {
		fmt.Fprintln(w, "board:        (no Board struct)")
	} else {
		fmt.Fprintf(w, "field:        %s\n", info.FieldDecl())
		fmt.Fprintf(w, "constructor:  %s\n", info.ConstructorDecl())
	}
	fmt.Fprintf(w, "types:        %s\n", strings.Join(info.AvailableTypes, ", "))
	for _, sub := range info.Substitutions {
		concrete := "unresolved"
		if sub.Concrete != nil {
			concrete = *sub.Concrete
		}
		fmt.Fprintf(w, "generic:      %s -> %s\n", sub.Param, concrete)
	}
	return nil
}

func ProjectNewAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("project new takes exactly one project name")
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	var cat *board.Catalog
	names := c.StringSlice(flagBoard)
	if len(names) > 0 {
		cat = e.catalog()
	}

	p, err := project.New(c.Args().First(), e.options(cat))
	if err != nil {
		return err
	}
	for _, name := range names {
		b, err := findBoard(cat, name)
		if err != nil {
			return err
		}
		if _, err := p.AddBoard(b); err != nil {
			return err
		}
	}
	if err := p.SaveAs(c.String(flagDir), true); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Created project %s in %s\n", p.Name, p.Location)
	return nil
}

func ProjectAddBoardAction(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return errors.New("add-board needs at least one board name")
	}
	e, p, err := openProject(c)
	if err != nil {
		return err
	}
	cat := e.catalog()
	for _, name := range c.Args().Slice() {
		b, err := findBoard(cat, name)
		if err != nil {
			return err
		}
		if _, err := p.AddBoard(b); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Added %s\n", name)
	}
	return p.Save()
}

func ProjectRemoveBoardAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("remove-board takes exactly one board name")
	}
	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	b, ok := p.System.FindByName(c.Args().First())
	if !ok {
		return fmt.Errorf("%w: %s", project.ErrUnknownBoard, c.Args().First())
	}
	if err := p.RemoveBoard(b.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Removed %s\n", b.Name())
	return p.Save()
}

func ProjectConnectAction(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return errors.New("connect takes a main board and a secondary board")
	}
	ifaceType, err := board.ParseInterfaceType(strings.ToUpper(c.String(flagInterface)))
	if err != nil {
		return err
	}
	dir, err := board.ParseDirection(strings.ToLower(c.String(flagDirection)))
	if err != nil {
		return err
	}

	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	mainBoard, ok := p.System.FindByName(c.Args().Get(0))
	if !ok {
		return fmt.Errorf("%w: %s", project.ErrUnknownBoard, c.Args().Get(0))
	}
	secondary, ok := p.System.FindByName(c.Args().Get(1))
	if !ok {
		return fmt.Errorf("%w: %s", project.ErrUnknownBoard, c.Args().Get(1))
	}
	iface := board.Interface{Type: ifaceType, Direction: dir}
	if err := p.Connect(mainBoard.ID, secondary.ID, iface); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Connected %s -> %s over %s\n", mainBoard.Name(), secondary.Name(), iface)
	return p.Save()
}

func ProjectShowAction(c *cli.Context) error {
	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Project %s (%s)\n", p.Name, p.Location)
	fmt.Fprintln(w, "\nBoards:")
	for i, b := range p.System.Boards {
		role := "peripheral"
		if b.IsMainBoard() {
			role = "main"
		}
		fmt.Fprintf(w, "  [%d] %s (%s, bsp %q)\n", i, b.Name(), role, b.BSPCrate())
	}
	fmt.Fprintln(w, "\nConnections:")
	for i, pair := range p.System.IndexPairs() {
		fmt.Fprintf(w, "  [%d] %d -> %d over %s\n", i, pair.Main, pair.Secondary, p.System.Connections[i].Interface)
	}
	return nil
}

func CheckAction(c *cli.Context) error {
	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	result, err := p.CheckSystem(c.Context)
	if err != nil {
		return err
	}

	if c.Bool(flagJSON) {
		if err := writeJSON(c.App.Writer, result); err != nil {
			return err
		}
	} else {
		for _, v := range result.Violations {
			who := v.Board
			if who == "" {
				who = "-"
			}
			fmt.Fprintf(c.App.Writer, "%s: [%s] %s: %s\n", strings.ToUpper(v.Severity), v.Rule, who, v.Message)
		}
		fmt.Fprintf(c.App.Writer, "\n%d violations (%d errors, %d warnings, %d info)\n",
			result.Summary.TotalViolations, result.Summary.Errors, result.Summary.Warnings, result.Summary.Info)
	}
	if result.HasErrors() {
		return cli.Exit("", 1)
	}
	return nil
}

func FactsAction(c *cli.Context) error {
	deltaFrom, deltaOut := c.String(flagDeltaFrom), c.String(flagDeltaOut)
	if (deltaFrom == "") != (deltaOut == "") {
		return errors.New("--delta-from and --delta-out must be used together")
	}
	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	tables := p.Facts()

	if out := c.String(flagOutput); out != "" {
		if err := writeJSONFile(out, tables); err != nil {
			return fmt.Errorf("writing facts: %w", err)
		}
	} else if err := writeJSON(c.App.Writer, tables); err != nil {
		return fmt.Errorf("encoding facts: %w", err)
	}

	if deltaFrom != "" {
		prev, err := readTables(deltaFrom)
		if err != nil {
			return fmt.Errorf("reading delta-from: %w", err)
		}
		if err := writeJSONFile(deltaOut, facts.ComputeDelta(prev, tables)); err != nil {
			return fmt.Errorf("writing delta: %w", err)
		}
	}
	return nil
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSONFile(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return writeJSON(f, data)
}

func GenerateAction(c *cli.Context) error {
	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	res, err := p.GenerateSystemModule()
	if err != nil {
		return err
	}
	if res.Placeholder {
		fmt.Fprintf(c.App.Writer, "Wrote placeholder module to %s\n", res.Path)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Wrote System module for %d boards to %s\n", len(res.Boards), res.Path)
	return nil
}

func BuildAction(c *cli.Context) error {
	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	if !c.Bool(flagNoGenerate) {
		if _, err := p.GenerateSystemModule(); err != nil {
			return err
		}
	}
	if err := p.Build(); err != nil {
		return err
	}
	stream(c.App.Writer, p)
	return nil
}

func FlashAction(c *cli.Context) error {
	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	if err := p.Flash(); err != nil {
		return err
	}
	stream(c.App.Writer, p)
	return nil
}

func TemplateAction(c *cli.Context) error {
	_, p, err := openProject(c)
	if err != nil {
		return err
	}
	if err := p.GenerateTemplate(); err != nil {
		return err
	}
	stream(c.App.Writer, p)
	return nil
}

// stream prints toolchain output as it arrives until the job finishes
func stream(w io.Writer, p *project.Project) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for p.Running() {
		for _, line := range p.PollTerminal() {
			fmt.Fprintln(w, line)
		}
		<-ticker.C
	}
	for _, line := range p.Wait() {
		fmt.Fprintln(w, line)
	}
}
