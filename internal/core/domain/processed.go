package domain

import (
	"errors"
	"time"
)

var ErrEmptyBatch = errors.New("no files were uploaded")
var ErrFileNotFound = errors.New("processed file not found")

// ProcessedFile is one extracted document held by the transient registry.
// The temp file at FilePath is owned 1:1 by this entry and is removed
// whenever the entry is removed.
type ProcessedFile struct {
	ID            string           `json:"id"`
	FileName      string           `json:"fileName"`
	FilePath      string           `json:"filePath"`
	ProcessedTime time.Time        `json:"processedTime"`
	FinancialData *FinancialRecord `json:"financialData,omitempty"`
}

// ProcessingResult is the per-file outcome of one upload batch. It is never
// persisted beyond the response.
type ProcessingResult struct {
	ID            string         `json:"id"`
	FileName      string         `json:"fileName"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
	ProcessedFile *ProcessedFile `json:"processedFile,omitempty"`
}
