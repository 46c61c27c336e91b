package project

import (
	"errors"

	"github.com/iron-coder/ironcoder/internal/system"
)

var (
	ErrNoMainBoard        = errors.New("project has no main board")
	ErrNoProjectDirectory = errors.New("project has no directory")
	ErrNoProjectTemplate  = errors.New("main board has no project template")
	ErrLoadManifest       = errors.New("invalid project manifest")
	// ErrWouldOverwrite is returned by SaveAs when the target already holds a project file
	ErrWouldOverwrite = errors.New("directory already contains a project file")

	ErrDuplicateBoard  = system.ErrDuplicateBoard
	ErrMainBoardExists = system.ErrMainBoardExists
	ErrUnknownBoard    = system.ErrUnknownBoard
)
