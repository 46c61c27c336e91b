package project

import (
	"github.com/iron-coder/ironcoder/internal/toolchain"
)

func (p *Project) cargo(args ...string) toolchain.Command {
	name := p.cfg.Toolchain.Cargo
	if name == "" {
		name = "cargo"
	}
	return toolchain.Command{Name: name, Args: args}
}

// cargoIn runs a cargo subcommand against the project directory
func (p *Project) cargoIn(args ...string) toolchain.Command {
	return p.cargo(append([]string{"-Z", "unstable-options", "-C", p.Location}, args...)...)
}

// Build starts `cargo build` for the project in the background
func (p *Project) Build() error {
	if p.Location == "" {
		p.logger.Info("project needs a valid working directory before building")
		return ErrNoProjectDirectory
	}
	p.logger.Infow("building project", "dir", p.Location)
	p.run(p.cargoIn(p.cfg.Toolchain.BuildArgs...))
	return nil
}

// Flash starts the configured flash command for the project in the background
func (p *Project) Flash() error {
	if p.Location == "" {
		p.logger.Info("project needs a valid working directory before flashing")
		return ErrNoProjectDirectory
	}
	p.logger.Infow("flashing project", "dir", p.Location)
	p.run(p.cargoIn(p.cfg.Toolchain.FlashArgs...))
	return nil
}

// GenerateTemplate generates the cargo project from the main board's
// template and adds every local BSP crate as a dependency.
func (p *Project) GenerateTemplate() error {
	mb, ok := p.System.MainBoard()
	if !ok {
		return ErrNoMainBoard
	}
	if p.Location == "" {
		return ErrNoProjectDirectory
	}
	if mb.TemplateDir == "" {
		return ErrNoProjectTemplate
	}

	p.logger.Infow("generating project template", "template", mb.TemplateDir)
	cmds := []toolchain.Command{
		p.cargo("generate", "--path", mb.TemplateDir, "--name", p.Name, "--destination", p.Location, "--init"),
	}
	for _, b := range p.System.Boards {
		if b.BSPDir != "" {
			cmds = append(cmds, p.cargoIn("add", "--path", b.BSPDir))
		}
	}
	p.run(cmds...)
	return nil
}

// run replaces the current background job. An unfinished previous job keeps
// running but its output is no longer collected.
func (p *Project) run(cmds ...toolchain.Command) {
	if p.job != nil && !p.job.Done() {
		p.logger.Debug("replacing unfinished background job")
	}
	p.job = toolchain.Start(cmds, p.logger)
}

// PollTerminal moves any toolchain output received so far into the terminal
// without blocking.
func (p *Project) PollTerminal() []string {
	lines := p.job.Poll()
	for _, line := range lines {
		p.Terminal.WriteLine(line)
	}
	return lines
}

// Wait blocks until the current background job finishes and moves its
// remaining output into the terminal.
func (p *Project) Wait() []string {
	lines := p.job.Wait()
	for _, line := range lines {
		p.Terminal.WriteLine(line)
	}
	return lines
}

// Running reports whether a background job is still executing
func (p *Project) Running() bool {
	return !p.job.Done()
}
