package services

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint for filenames, not security
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

var ingestLog = logger.For("ingest")

// Ensure IngestionOrchestrator implements the interface.
var _ driving.IngestionService = (*IngestionOrchestrator)(nil)

// EmptyTextMessage is recorded when extraction yields no usable text.
const EmptyTextMessage = "Aucun texte extrait du document"

// MinImageSize is the smallest width and height of a kept image, in pixels.
const MinImageSize = 50

// IngestionOrchestrator runs uploaded documents through extraction,
// chunking, anonymization and indexing.
type IngestionOrchestrator struct {
	docStore   driven.DocumentStore
	blobs      driven.BlobStore
	registry   driven.NormaliserRegistry
	chunker    driven.Chunker
	progress   driven.ProgressStore
	anonymizer driving.AnonymizationService
	search     *SearchService

	running *keyedMutex
	wg      sync.WaitGroup
}

// NewIngestionOrchestrator creates a new ingestion orchestrator.
func NewIngestionOrchestrator(
	docStore driven.DocumentStore,
	blobs driven.BlobStore,
	registry driven.NormaliserRegistry,
	chunker driven.Chunker,
	progress driven.ProgressStore,
	anonymizer driving.AnonymizationService,
	search *SearchService,
) *IngestionOrchestrator {
	if search == nil {
		search = NewSearchService(nil, nil)
	}
	return &IngestionOrchestrator{
		docStore:   docStore,
		blobs:      blobs,
		registry:   registry,
		chunker:    chunker,
		progress:   progress,
		anonymizer: anonymizer,
		search:     search,
		running:    newKeyedMutex(),
	}
}

// Upload stores the file and creates a PENDING document.
func (o *IngestionOrchestrator) Upload(ctx context.Context, req driving.UploadRequest) (*domain.Document, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	if !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: invalid category %q", domain.ErrInvalidInput, req.Category)
	}
	fileType := domain.DetectFileType(req.Filename)
	if fileType == domain.FileTypeOther {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path.Base(req.Filename))
	}

	id := uuid.New().String()
	stored := id + "." + string(fileType)
	filePath, err := o.blobs.Put(ctx, path.Join(req.ProjectID, stored), req.Content)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:               id,
		ProjectID:        req.ProjectID,
		Category:         req.Category,
		OriginalFilename: path.Base(req.Filename),
		StoredFilename:   stored,
		FileType:         fileType,
		FileSize:         int64(len(req.Content)),
		FilePath:         filePath,
		Status:           domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		_ = o.blobs.Delete(ctx, filePath)
		return nil, fmt.Errorf("save document: %w", err)
	}

	ingestLog.Info("Uploaded %s as %s (%s, %d bytes)", doc.OriginalFilename, doc.ID, fileType, doc.FileSize)
	return doc, nil
}

// Start launches Process in the background and returns immediately.
func (o *IngestionOrchestrator) Start(ctx context.Context, documentID string) error {
	doc, err := o.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if !doc.Status.CanTransition(domain.StatusProcessing) {
		return fmt.Errorf("%w: %s is %s", domain.ErrInvalidTransition, documentID, doc.Status)
	}

	runCtx := context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.Process(runCtx, documentID); err != nil {
			ingestLog.Error("Ingestion of %s did not start: %v", documentID, err)
		}
	}()
	return nil
}

// Wait blocks until every background run has finished.
func (o *IngestionOrchestrator) Wait() {
	o.wg.Wait()
}

// Process runs the pipeline for a document until it reaches a terminal state.
// Only one run per document may be active at a time.
func (o *IngestionOrchestrator) Process(ctx context.Context, documentID string) error {
	unlock, ok := o.running.TryLock(documentID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrIngestionInProgress, documentID)
	}
	defer unlock()

	doc, err := o.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if !doc.Status.CanTransition(domain.StatusProcessing) {
		return fmt.Errorf("%w: %s is %s", domain.ErrInvalidTransition, documentID, doc.Status)
	}

	logger.Section("Ingestion " + doc.OriginalFilename)
	if err := o.runGuarded(ctx, doc); err != nil {
		o.markFailed(ctx, doc, err.Error())
	}
	return nil
}

// runGuarded turns a panic anywhere in the pipeline into a failed run, so the
// document never stays in processing.
func (o *IngestionOrchestrator) runGuarded(ctx context.Context, doc *domain.Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ingestLog.Debug("Panic while ingesting %s:\n%s", doc.ID, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return o.run(ctx, doc)
}

// Progress returns the latest reported step of a document.
// Documents without a recorded step report their persisted status.
func (o *IngestionOrchestrator) Progress(ctx context.Context, documentID string) (*domain.Progress, error) {
	p, err := o.progress.Get(ctx, documentID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	doc, err := o.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	var derived domain.Progress
	switch doc.Status {
	case domain.StatusCompleted:
		derived = domain.NewProgress(documentID, domain.StepCompleted)
	case domain.StatusFailed:
		derived = domain.FailedProgress(documentID, doc.Error)
	default:
		derived = domain.NewProgress(documentID, domain.StepPending)
	}
	return &derived, nil
}

// run executes the pipeline steps in order. A returned error fails the run.
func (o *IngestionOrchestrator) run(ctx context.Context, doc *domain.Document) error {
	if err := o.docStore.UpdateStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	doc.Status = domain.StatusProcessing

	o.report(ctx, doc.ID, domain.StepReading)
	content, err := o.blobs.Get(ctx, doc.FilePath)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	o.report(ctx, doc.ID, domain.StepExtractingText)
	extraction, err := o.registry.Normalise(ctx, doc.FileType, content)
	if err != nil {
		ingestLog.Error("Text extraction failed for %s: %v", doc.OriginalFilename, err)
		extraction = &driven.NormaliseResult{}
	}
	if extraction == nil || strings.TrimSpace(extraction.Text) == "" {
		o.markFailed(ctx, doc, EmptyTextMessage)
		return nil
	}

	o.report(ctx, doc.ID, domain.StepExtractingImages)
	images, err := o.registry.ExtractImages(ctx, doc.FileType, content, MinImageSize)
	if err != nil {
		ingestLog.Error("Image extraction failed for %s: %v", doc.OriginalFilename, err)
		images = nil
	}

	o.report(ctx, doc.ID, domain.StepChunking)
	chunks, err := o.chunker.Process(ctx, doc, extraction)
	if err != nil {
		return fmt.Errorf("chunk: %w", err)
	}
	ingestLog.Debug("%s: %d chunks from %d pages", doc.OriginalFilename, len(chunks), extraction.PageCount)

	o.report(ctx, doc.ID, domain.StepAnonymizing)
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Content
		}
		anonymized, err := o.anonymizer.AnonymizeBatch(ctx, doc.ProjectID, texts)
		if err != nil {
			return fmt.Errorf("anonymize: %w", err)
		}
		for i := range chunks {
			chunks[i].AnonymizedContent = anonymized[i]
		}
		if err := o.docStore.SaveChunks(ctx, chunks); err != nil {
			return fmt.Errorf("save chunks: %w", err)
		}
	}

	o.report(ctx, doc.ID, domain.StepIndexing)
	if err := o.search.Index(ctx, doc, chunks); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	if err := o.saveImages(ctx, doc, images); err != nil {
		return fmt.Errorf("save images: %w", err)
	}

	doc.PageCount = extraction.PageCount
	doc.ChunkCount = len(chunks)
	doc.Status = domain.StatusCompleted
	doc.Error = ""
	doc.UpdatedAt = time.Now().UTC()
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	o.report(ctx, doc.ID, domain.StepCompleted)

	ingestLog.Info("Ingested %s: %d chunks, %d images", doc.OriginalFilename, len(chunks), len(images))
	return nil
}

// saveImages stores image files and rows.
func (o *IngestionOrchestrator) saveImages(ctx context.Context, doc *domain.Document, images []domain.ExtractedImage) error {
	if len(images) == 0 {
		return nil
	}
	rows := make([]domain.DocumentImage, 0, len(images))
	for i, img := range images {
		name := ImageFilename(img.PageNumber, i, img.Data, img.Ext)
		filePath, err := o.blobs.Put(ctx, path.Join(ImagePrefix(doc), name), img.Data)
		if err != nil {
			return err
		}
		rows = append(rows, domain.DocumentImage{
			ID:             uuid.New().String(),
			DocumentID:     doc.ID,
			StoredFilename: name,
			FilePath:       filePath,
			PageNumber:     img.PageNumber,
			Context:        img.Context,
			Width:          img.Width,
			Height:         img.Height,
			CreatedAt:      time.Now().UTC(),
		})
	}
	return o.docStore.SaveImages(ctx, rows)
}

// markFailed records a failed run. Persistence errors are logged and dropped
// so they do not hide the original failure.
func (o *IngestionOrchestrator) markFailed(ctx context.Context, doc *domain.Document, msg string) {
	ingestLog.Error("Ingestion of %s failed: %s", doc.OriginalFilename, msg)
	progress := domain.FailedProgress(doc.ID, msg)
	if err := o.progress.Set(ctx, progress); err != nil {
		ingestLog.Error("Recording failure progress for %s: %v", doc.ID, err)
	}
	if err := o.docStore.UpdateStatus(ctx, doc.ID, domain.StatusFailed, progress.Error); err != nil {
		ingestLog.Error("Marking %s failed: %v", doc.ID, err)
	}
}

func (o *IngestionOrchestrator) report(ctx context.Context, documentID string, step domain.Step) {
	if err := o.progress.Set(ctx, domain.NewProgress(documentID, step)); err != nil {
		ingestLog.Warn("Recording progress %s for %s: %v", step, documentID, err)
	}
}

// ImagePrefix returns the blob key prefix of a document's images.
func ImagePrefix(doc *domain.Document) string {
	return path.Join(doc.ProjectID, "images", doc.ID) + "/"
}

// ImageFilename builds page{n}_img{i}_{hash}.{ext} where hash is the first
// eight hex digits of the MD5 of the image bytes.
func ImageFilename(page, index int, data []byte, ext string) string {
	sum := md5.Sum(data) //nolint:gosec // fingerprint only
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("page%d_img%d_%s.%s", page, index, hex.EncodeToString(sum[:])[:8], ext)
}
