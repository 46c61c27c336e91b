// Package codegen synthesizes the System module from the BSPs of the boards
// in a system.
package codegen

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/iron-coder/ironcoder/internal/bsp"
	"github.com/iron-coder/ironcoder/internal/config"
	"github.com/iron-coder/ironcoder/internal/fsutil"
	"github.com/iron-coder/ironcoder/internal/rustsyntax"
)

// Placeholder is written instead of the module when the rendered source does
// not parse.
const Placeholder = "// error generating module\n"

const (
	systemStruct = "System"
	constructor  = "new"
)

// Synthesizer runs the analysis pipeline over a board list and emits the
// System module.
type Synthesizer struct {
	Parser *rustsyntax.Parser
	Logger *zap.SugaredLogger

	// OutputPath is relative to the project root unless absolute
	OutputPath string

	// TimingPath enables JSONL timing events when non-empty
	TimingPath string
}

// Result describes one generation pass
type Result struct {
	Module *Module
	Boards []*bsp.ParseInfo
	Source []byte
	// Placeholder is true when Source is the fallback comment module
	Placeholder bool
	Path        string
}

// New creates a Synthesizer writing to the default output path
func New(parser *rustsyntax.Parser, logger *zap.SugaredLogger) *Synthesizer {
	if parser == nil {
		parser = rustsyntax.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Synthesizer{
		Parser:     parser,
		Logger:     logger,
		OutputPath: config.DefaultOutputPath,
	}
}

// Build analyzes every board in order and assembles the module. Any board
// failure aborts the whole build.
func (s *Synthesizer) Build(boards []bsp.Source) (*Module, []*bsp.ParseInfo, error) {
	return s.build(boards, nil)
}

func (s *Synthesizer) build(boards []bsp.Source, tr *timingRecorder) (*Module, []*bsp.ParseInfo, error) {
	logger := s.logger()
	stageStart := time.Now()

	infos := make([]*bsp.ParseInfo, 0, len(boards))
	for _, b := range boards {
		boardStart := time.Now()
		info, err := bsp.Analyze(b, s.Parser, logger)
		if err == nil && !info.HasBoard() {
			err = &bsp.Error{
				Kind:  bsp.ErrBspMissing,
				Board: b.Name(),
				Err:   fmt.Errorf("crate %s has no Board struct", info.Crate),
			}
		}
		tr.RecordBoard("analyze", b.Name(), statusOf(err), boardStart)
		if err != nil {
			tr.RecordStage("analyze", stageStart, "error")
			return nil, nil, err
		}
		infos = append(infos, info)
	}
	tr.RecordStage("analyze", stageStart, "ok")

	return Assemble(infos), infos, nil
}

// Assemble builds the module from per-board results, in order
func Assemble(infos []*bsp.ParseInfo) *Module {
	m := &Module{}
	fields := make([]Field, 0, len(infos))
	inits := make([]FieldInit, 0, len(infos))
	for _, info := range infos {
		m.Items = append(m.Items, UseDecl{Path: info.Use})
		fields = append(fields, Field{Public: true, Name: info.Field, Type: info.FieldType.String()})
		inits = append(inits, FieldInit{Name: info.Field, Value: info.Constructor.String()})
	}
	m.Items = append(m.Items,
		StructDecl{Public: true, Name: systemStruct, Fields: fields},
		ImplDecl{Type: systemStruct, Methods: []Method{{
			Public:  true,
			Name:    constructor,
			Returns: "Self",
			Init:    inits,
		}}},
	)
	return m
}

// Render formats the module and checks that the result parses. On failure it
// returns the placeholder module and false.
func (s *Synthesizer) Render(m *Module) ([]byte, bool) {
	return s.validate(m, Format(m))
}

func (s *Synthesizer) validate(m *Module, src []byte) ([]byte, bool) {
	err := checkIdents(m)
	if err == nil {
		_, err = s.Parser.Parse("<system module>", src)
	}
	if err != nil {
		s.logger().Warnw("couldn't parse generated module, writing placeholder", "error", err)
		return []byte(Placeholder), false
	}
	return src, true
}

// Generate builds, renders and writes the System module under projectRoot.
// Nothing is written when Build fails.
func (s *Synthesizer) Generate(boards []bsp.Source, projectRoot string) (*Result, error) {
	start := time.Now()
	tr := newTimingRecorder(start, s.TimingPath)
	defer tr.Close()
	if err := tr.Err(); err != nil {
		s.logger().Warnw("timing disabled", "path", s.TimingPath, "error", err)
	}

	m, infos, err := s.build(boards, tr)
	if err != nil {
		tr.RecordStage("total", start, "error")
		return nil, err
	}

	renderStart := time.Now()
	src := Format(m)
	tr.RecordStage("render", renderStart, "ok")

	validateStart := time.Now()
	src, ok := s.validate(m, src)
	placeholder := !ok
	validateStatus := "ok"
	if placeholder {
		validateStatus = "placeholder"
	}
	tr.RecordStage("validate", validateStart, validateStatus)

	path := s.outputPath(projectRoot)
	writeStart := time.Now()
	err = fsutil.WriteFileAtomic(path, src, 0o644)
	tr.RecordStage("write", writeStart, statusOf(err))
	tr.RecordStage("total", start, statusOf(err))
	if err != nil {
		return nil, fmt.Errorf("writing system module: %w", err)
	}

	s.logger().Infow("generated system module", "path", path, "boards", len(infos), "placeholder", placeholder)
	return &Result{
		Module:      m,
		Boards:      infos,
		Source:      src,
		Placeholder: placeholder,
		Path:        path,
	}, nil
}

func (s *Synthesizer) outputPath(projectRoot string) string {
	path := s.OutputPath
	if path == "" {
		path = config.DefaultOutputPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

func (s *Synthesizer) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return s.Logger
}
