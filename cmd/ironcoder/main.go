// =============================================================================
// Iron Coder - Main Entry Point
// =============================================================================
//
// Command-line front end for composing embedded projects from a board catalog.
//
// THE PIPELINE (generate):
//   1. Catalog loader reads board manifests (TOML, checked against CUE)
//   2. The project file (.ironcoder.toml) is loaded and reconciled with the catalog
//   3. Tree-sitter parses each board's BSP crate (src/lib.rs)
//   4. The analysis visitor finds the Board struct and resolves its generics
//   5. The System module is rendered, re-parsed, and written atomically
//
// `check` runs the OPA system rules over the project's fact tables.
// =============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	// Global flags.
	flagConfig    = "config"
	flagBoardsDir = "boards-dir"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"

	// Command flags.
	flagProject    = "project"
	flagDir        = "dir"
	flagBoard      = "board"
	flagForce      = "force"
	flagMain       = "main"
	flagJSON       = "json"
	flagCrate      = "crate"
	flagInterface  = "interface"
	flagDirection  = "direction"
	flagOutput     = "output"
	flagDeltaFrom  = "delta-from"
	flagDeltaOut   = "delta-out"
	flagNoGenerate = "no-generate"
)

var projectFlag = &cli.StringFlag{
	Name:    flagProject,
	Aliases: []string{"p"},
	Value:   ".",
	Usage:   "project `DIR` containing .ironcoder.toml",
}

var app = &cli.App{
	Name:            "ironcoder",
	Usage:           "compose embedded Rust projects from a board catalog",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:  flagBoardsDir,
			Usage: "board catalog `DIR` (overrides boardsDir)",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  flagLogFormat,
			Usage: "console or json",
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "init",
			Usage: "create an ironcoder.json configuration file",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: flagForce, Usage: "overwrite an existing file"},
			},
			Action: InitAction,
		},
		{
			Name:  "boards",
			Usage: "list the board catalog",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: flagMain, Usage: "only main boards"},
				&cli.BoolFlag{Name: flagJSON, Usage: "print manifests as JSON"},
			},
			Action: BoardsAction,
		},
		{
			Name:      "bsp",
			Usage:     "analyze one BSP crate and print what code generation would use",
			ArgsUsage: "<crate dir>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: flagCrate, Usage: "crate `NAME` (defaults to the directory name)"},
			},
			Action: BSPAction,
		},
		{
			Name:            "project",
			Usage:           "create and edit projects",
			HideHelpCommand: true,
			Subcommands: []*cli.Command{
				{
					Name:      "new",
					Usage:     "create a project folder with its project file",
					ArgsUsage: "<name>",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: flagDir, Value: ".", Usage: "parent `DIR` for the project folder"},
						&cli.StringSliceFlag{Name: flagBoard, Usage: "add catalog board `NAME` (repeatable)"},
					},
					Action: ProjectNewAction,
				},
				{
					Name:      "add-board",
					Usage:     "add catalog boards to the project",
					ArgsUsage: "<board>...",
					Flags:     []cli.Flag{projectFlag},
					Action:    ProjectAddBoardAction,
				},
				{
					Name:      "remove-board",
					Usage:     "remove a board and its connections",
					ArgsUsage: "<board>",
					Flags:     []cli.Flag{projectFlag},
					Action:    ProjectRemoveBoardAction,
				},
				{
					Name:      "connect",
					Usage:     "connect two boards over an interface",
					ArgsUsage: "<main board> <secondary board>",
					Flags: []cli.Flag{
						projectFlag,
						&cli.StringFlag{Name: flagInterface, Required: true, Usage: "interface `TYPE` (GPIO, I2C, SPI, ...)"},
						&cli.StringFlag{Name: flagDirection, Usage: "input, output or bidirectional"},
					},
					Action: ProjectConnectAction,
				},
				{
					Name:   "show",
					Usage:  "print the project's boards and connections",
					Flags:  []cli.Flag{projectFlag},
					Action: ProjectShowAction,
				},
			},
		},
		{
			Name:   "check",
			Usage:  "evaluate the system rules",
			Flags:  []cli.Flag{projectFlag, &cli.BoolFlag{Name: flagJSON, Usage: "print JSON"}},
			Action: CheckAction,
		},
		{
			Name:  "facts",
			Usage: "print the project's fact tables",
			Flags: []cli.Flag{
				projectFlag,
				&cli.StringFlag{Name: flagOutput, Usage: "write to `FILE` instead of stdout"},
				&cli.StringFlag{Name: flagDeltaFrom, Usage: "previous facts `FILE` to diff against"},
				&cli.StringFlag{Name: flagDeltaOut, Usage: "write the delta to `FILE`"},
			},
			Action: FactsAction,
		},
		{
			Name:   "generate",
			Usage:  "write the System module into the project",
			Flags:  []cli.Flag{projectFlag},
			Action: GenerateAction,
		},
		{
			Name:  "build",
			Usage: "build the project with cargo",
			Flags: []cli.Flag{
				projectFlag,
				&cli.BoolFlag{Name: flagNoGenerate, Usage: "skip regenerating the System module"},
			},
			Action: BuildAction,
		},
		{
			Name:   "flash",
			Usage:  "flash the project to the main board",
			Flags:  []cli.Flag{projectFlag},
			Action: FlashAction,
		},
		{
			Name:   "template",
			Usage:  "generate the cargo project from the main board's template",
			Flags:  []cli.Flag{projectFlag},
			Action: TemplateAction,
		},
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
