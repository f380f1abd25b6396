package generation

import (
	"errors"
	"fmt"
)

// Stage is a step of a single pipeline run. Rejected, CompileFailed and Done are terminal.
type Stage string

const (
	StageBuilding      Stage = "building"
	StageGenerating    Stage = "generating"
	StageSanitizing    Stage = "sanitizing"
	StageRejected      Stage = "rejected"
	StageCompiling     Stage = "compiling"
	StageCompileFailed Stage = "compile_failed"
	StagePackaging     Stage = "packaging"
	StageDone          Stage = "done"
)

// ErrResultNotFound is returned when an edit references an unknown or expired result.
var ErrResultNotFound = errors.New("result not found")

// Error reports the terminal stage of a failed run.
type Error struct {
	Stage Stage
	// Latex is the sanitized document sent to the compiler, set for StageCompileFailed.
	Latex string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StageOf returns the terminal stage for the outcome of a run.
func StageOf(err error) Stage {
	if err == nil {
		return StageDone
	}
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Stage
	}
	return StageBuilding
}
