package service

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound      = errors.New("negotiation session not found")
	ErrSupplierNotFound     = errors.New("supplier not found")
	ErrConcurrentAdvance    = errors.New("supplier is being advanced by another request")
	ErrNoDocumentsProcessed = errors.New("failed to upload any files")
)

// AnalysisParseError carries the raw unparsed model output so operators can
// diagnose what the provider actually returned.
type AnalysisParseError struct {
	RawOutput string
	Err       error
}

func (e *AnalysisParseError) Error() string {
	return fmt.Sprintf("failed to parse analysis output: %v", e.Err)
}

func (e *AnalysisParseError) Unwrap() error {
	return e.Err
}
