package ragerror

import (
	"context"
	"errors"
	"fmt"
)

// Sentinels for the failure classes the pipelines surface. Wrap with
// ragerror.New so callers get the stage and entity ids without digging
// through logs.
var (
	ErrExtraction    = errors.New("extraction failed")
	ErrEmptyDocument = errors.New("document produced zero chunks")
	ErrEmbedding     = errors.New("embedding failed")
	ErrIndex         = errors.New("vector index failed")
	ErrStore         = errors.New("relational store failed")
	ErrGeneration    = errors.New("generation failed")
	ErrTimeout       = errors.New("port call exceeded its time budget")
)

type Stage string

const (
	StageExtract  Stage = "extract"
	StageChunk    Stage = "chunk"
	StageEmbed    Stage = "embed"
	StageSearch   Stage = "search"
	StageGenerate Stage = "generate"
	StageStore    Stage = "store"
	StageCleanup  Stage = "cleanup"
)

// Error carries enough payload to diagnose a pipeline failure without logs.
type Error struct {
	Kind       error
	Stage      Stage
	DocumentID string
	SessionID  string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.DocumentID != "":
		return fmt.Sprintf("%s stage for document %s: %v", e.Stage, e.DocumentID, e.Err)
	case e.SessionID != "":
		return fmt.Sprintf("%s stage for session %s: %v", e.Stage, e.SessionID, e.Err)
	default:
		return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// New classifies err under kind at the given stage. A context deadline
// becomes ErrTimeout regardless of the kind the caller passed; a timeout is
// a port failure, not a hang.
func New(kind error, stage Stage, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrTimeout
	}
	return &Error{Kind: kind, Stage: stage, Err: err}
}

func (e *Error) ForDocument(id string) *Error {
	e.DocumentID = id
	return e
}

func (e *Error) ForSession(id string) *Error {
	e.SessionID = id
	return e
}
