package service

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/roknskapar/pdf-processor/internal/api/metrics"
	"github.com/roknskapar/pdf-processor/internal/core/domain"
	"github.com/roknskapar/pdf-processor/internal/core/ports"
)

const (
	pdfContentType = "application/pdf"
	// At most this many files are sent to the extractor at once, bounding
	// memory use and outbound API concurrency. Remaining files queue.
	maxConcurrentExtractions = 4
	// Small pause between closing the temp file and reopening it, so the
	// OS has released the write handle before the read.
	writeSettleDelay = 50 * time.Millisecond
)

// PDFService accepts one upload batch, persists each file to temp storage,
// runs extraction and registers the results.
type PDFService struct {
	extractor ports.Extractor
	registry  ports.FileRegistry
	tempDir   string
	sem       *semaphore.Weighted
	log       zerolog.Logger
}

func NewPDFService(extractor ports.Extractor, registry ports.FileRegistry, tempDir string, log zerolog.Logger) *PDFService {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &PDFService{
		extractor: extractor,
		registry:  registry,
		tempDir:   tempDir,
		sem:       semaphore.NewWeighted(maxConcurrentExtractions),
		log:       log,
	}
}

// ProcessFiles processes every PDF in the batch concurrently and returns one
// result per eligible file, in arbitrary order. Files whose declared content
// type is not PDF are skipped with a warning and do not appear in the
// results. Only an empty batch is a request-level error; per-file failures
// are reported inside the result list.
func (s *PDFService) ProcessFiles(ctx context.Context, files []*multipart.FileHeader) ([]domain.ProcessingResult, error) {
	if len(files) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	eligible := make([]*multipart.FileHeader, 0, len(files))
	for _, fh := range files {
		ct := fh.Header.Get("Content-Type")
		if !strings.EqualFold(ct, pdfContentType) {
			s.log.Warn().Str("file", fh.Filename).Str("content_type", ct).Msg("invalid file type received")
			metrics.FilesSkippedTotal.Inc()
			continue
		}
		eligible = append(eligible, fh)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]domain.ProcessingResult, 0, len(eligible))
	)
	for _, fh := range eligible {
		wg.Add(1)
		go func(fh *multipart.FileHeader) {
			defer wg.Done()
			res := s.processFile(ctx, fh)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(fh)
	}
	wg.Wait()

	return results, nil
}

func (s *PDFService) processFile(ctx context.Context, fh *multipart.FileHeader) domain.ProcessingResult {
	id := uuid.NewString()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return s.failure(id, fh.Filename, "", err)
	}
	defer s.sem.Release(1)

	start := time.Now()
	tempPath := filepath.Join(s.tempDir, id+".pdf")

	if err := s.saveToTemp(fh, tempPath); err != nil {
		return s.failure(id, fh.Filename, tempPath, err)
	}
	time.Sleep(writeSettleDelay)

	data, err := os.ReadFile(tempPath)
	if err != nil {
		return s.failure(id, fh.Filename, tempPath, err)
	}

	record, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return s.failure(id, fh.Filename, tempPath, err)
	}
	record.Normalize()

	processed := domain.ProcessedFile{
		ID:            id,
		FileName:      fh.Filename,
		FilePath:      tempPath,
		ProcessedTime: time.Now().UTC(),
		FinancialData: record,
	}
	s.registry.Add(processed)

	metrics.FilesProcessedTotal.WithLabelValues("success").Inc()
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	s.log.Info().Str("file", fh.Filename).Str("id", id).Msg("file processed")

	return domain.ProcessingResult{
		ID:            id,
		FileName:      fh.Filename,
		Success:       true,
		ProcessedFile: &processed,
	}
}

// saveToTemp streams the uploaded file exclusively to tempPath. The path is
// never written concurrently: ids are unique per call.
func (s *PDFService) saveToTemp(fh *multipart.FileHeader, tempPath string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (s *PDFService) failure(id, fileName, tempPath string, err error) domain.ProcessingResult {
	s.log.Error().Err(err).Str("file", fileName).Msg("error processing file")
	metrics.FilesProcessedTotal.WithLabelValues("failure").Inc()
	if tempPath != "" {
		if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.log.Error().Err(rmErr).Str("path", tempPath).Msg("failed to delete temp file")
		}
	}
	return domain.ProcessingResult{ID: id, FileName: fileName, Success: false, Error: err.Error()}
}
