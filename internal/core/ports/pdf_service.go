package ports

import (
	"context"
	"mime/multipart"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

// Extractor turns raw PDF bytes into a financial record via the external
// model. A single attempt is made; failures propagate to the caller.
type Extractor interface {
	Extract(ctx context.Context, pdf []byte) (*domain.FinancialRecord, error)
}

// FileRegistry is the transient store of processed files.
type FileRegistry interface {
	// Add inserts the entry; it is a no-op when the id is already present.
	Add(file domain.ProcessedFile)
	Get(id string) (domain.ProcessedFile, bool)
	// List returns a snapshot of all current entries in arbitrary order.
	List() []domain.ProcessedFile
	// Clear deletes every referenced temp file (best-effort) and empties
	// the registry.
	Clear()
}

// PDFService processes one upload batch.
type PDFService interface {
	ProcessFiles(ctx context.Context, files []*multipart.FileHeader) ([]domain.ProcessingResult, error)
}
