package project

import (
	"errors"
	"fmt"

	"github.com/milk9111/ldtkloader/assets"
)

// Errors returned by Loader. None of them is retryable: the project file or
// the loader's Features have to change first.
var (
	ErrInternalLevelsDisabled      = errors.New("project: ldtk project uses internal levels, but internal level support is disabled")
	ErrExternalLevelsDisabled      = errors.New("project: ldtk project uses external levels, but external level support is disabled")
	ErrInternalLevelWithNullLayers = errors.New("project: ldtk project uses internal levels, but some level's layer instances are null")
	ErrExternalLevelWithNullPath   = errors.New("project: ldtk project uses external levels, but some level's external path is null")
)

// ParseError is returned when the project file is not valid LDtk JSON.
type ParseError struct {
	Path assets.AssetPath
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("project: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
