package project

import (
	"context"

	"github.com/iron-coder/ironcoder/internal/codegen"
	"github.com/iron-coder/ironcoder/internal/policy"
)

// GenerateSystemModule writes the System module for the current board list
// into the project and attaches each board's parse result.
func (p *Project) GenerateSystemModule() (*codegen.Result, error) {
	if p.Location == "" {
		return nil, ErrNoProjectDirectory
	}

	synth := codegen.New(p.parser, p.logger)
	synth.OutputPath = p.cfg.Output.Path
	if p.cfg.Timing.Enabled {
		synth.TimingPath = p.cfg.TimingPath(p.Location)
	}

	res, err := synth.Generate(p.System.Sources(), p.Location)
	if err != nil {
		p.logger.Warnw("couldn't generate system module", "error", err)
		return nil, err
	}
	for i := range p.System.Boards {
		p.System.Boards[i].ParseInfo = res.Boards[i]
	}
	return res, nil
}

// CheckSystem evaluates the system rules
func (p *Project) CheckSystem(ctx context.Context) (*policy.Result, error) {
	engine, err := policy.New(p.cfg)
	if err != nil {
		return nil, err
	}
	return engine.Evaluate(ctx, p.Facts())
}
