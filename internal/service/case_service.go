package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"veridoc/internal/config"
	"veridoc/internal/crypt"
	"veridoc/internal/domain"
	"veridoc/internal/export"
	"veridoc/internal/port"
)

// exportPageSize bounds one repository page while streaming an export.
const exportPageSize = 500

// CreateCaseInput is the DTO for creating a verification case. For a
// passport/license pair the passport is the primary file and the license is
// the pair file.
type CreateCaseInput struct {
	DocType    domain.DocumentType
	File       multipart.File
	Header     *multipart.FileHeader
	PairFile   multipart.File
	PairHeader *multipart.FileHeader
}

// CaseService defines the verification case management contract.
type CaseService interface {
	Create(ctx context.Context, input *CreateCaseInput) (*domain.VerificationCase, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationCase, *domain.CaseResult, error)
	List(ctx context.Context, offset, limit int) ([]domain.VerificationCase, int, error)
	GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	ExportRows(ctx context.Context) ([]export.Row, error)
	ProcessCase(ctx context.Context, c *domain.VerificationCase, maxRetries int)
}

type caseService struct {
	repo     port.CaseRepository
	storage  port.ObjectStorage
	verifier VerificationService
	box      *crypt.Box // nil disables payload encryption
	cfg      *config.S3Config
}

// NewCaseService creates a new CaseService implementation.
func NewCaseService(
	repo port.CaseRepository,
	storage port.ObjectStorage,
	verifier VerificationService,
	box *crypt.Box,
	cfg *config.S3Config,
) CaseService {
	return &caseService{
		repo:     repo,
		storage:  storage,
		verifier: verifier,
		box:      box,
		cfg:      cfg,
	}
}

func (s *caseService) Create(ctx context.Context, input *CreateCaseInput) (*domain.VerificationCase, error) {
	if !domain.ValidDocumentTypes[input.DocType] {
		return nil, domain.ErrInvalidDocumentType
	}

	contentType, err := s.validateUpload(input.File, input.Header)
	if err != nil {
		return nil, err
	}

	pairContentType := ""
	if input.PairFile != nil {
		pairContentType, err = s.validateUpload(input.PairFile, input.PairHeader)
		if err != nil {
			return nil, err
		}
	}

	caseID := uuid.New()
	s3Key := fmt.Sprintf("cases/%s/%s", caseID, input.Header.Filename)

	c := &domain.VerificationCase{
		ID:           caseID,
		DocType:      input.DocType,
		OriginalName: input.Header.Filename,
		ContentType:  contentType,
		FileSize:     input.Header.Size,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		Status:       domain.CaseStatusQueued,
	}

	log.Printf("caseService.Create: uploading case %s (%s, %d bytes)", caseID, contentType, input.Header.Size)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	}); err != nil {
		log.Printf("caseService.Create: upload failed for case %s: %v", caseID, err)
		return nil, domain.ErrUploadFailed
	}

	if input.PairFile != nil {
		pairKey := fmt.Sprintf("cases/%s/pair/%s", caseID, input.PairHeader.Filename)
		if _, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.Bucket,
			Key:         pairKey,
			Body:        input.PairFile,
			ContentType: pairContentType,
			Size:        input.PairHeader.Size,
		}); err != nil {
			log.Printf("caseService.Create: pair upload failed for case %s: %v", caseID, err)
			return nil, domain.ErrUploadFailed
		}
		c.PairOriginalName = input.PairHeader.Filename
		c.PairContentType = pairContentType
		c.PairS3Key = pairKey
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating case: %w", err)
	}
	return c, nil
}

// validateUpload checks extension, size, and magic-byte content type, then
// rewinds the file for upload. Returns the canonical content type.
func (s *caseService) validateUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if header.Size > maxBytes {
		return "", domain.ErrFileTooLarge
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading file header: %w", err)
	}
	if _, valid := domain.AllowedContentTypes[http.DetectContentType(buf[:n])]; !valid {
		return "", domain.ErrUnsupportedFileType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seeking file: %w", err)
	}
	return domain.AllowedFileTypes[fileType], nil
}

func (s *caseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationCase, *domain.CaseResult, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.decodeResult(c)
	if err != nil {
		return nil, nil, err
	}
	return c, result, nil
}

func (s *caseService) List(ctx context.Context, offset, limit int) ([]domain.VerificationCase, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *caseService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, c.S3Bucket, c.S3Key, s.cfg.PresignExpiry)
}

// ExportRows loads all cases page by page and decodes their stored results.
// Cases whose payload cannot be decoded are exported with metadata only.
func (s *caseService) ExportRows(ctx context.Context) ([]export.Row, error) {
	var rows []export.Row
	for offset := 0; ; offset += exportPageSize {
		cases, total, err := s.repo.List(ctx, offset, exportPageSize)
		if err != nil {
			return nil, err
		}
		for i := range cases {
			result, derr := s.decodeResult(&cases[i])
			if derr != nil {
				log.Printf("caseService.ExportRows: skipping payload for case %s: %v", cases[i].ID, derr)
				result = nil
			}
			rows = append(rows, export.Row{Case: cases[i], Result: result})
		}
		if offset+exportPageSize >= total || len(cases) == 0 {
			break
		}
	}
	return rows, nil
}

// decodeResult unwraps a stored case payload, decrypting it first when the
// case was sealed at rest. Returns nil for cases without a payload.
func (s *caseService) decodeResult(c *domain.VerificationCase) (*domain.CaseResult, error) {
	if len(c.Payload) == 0 {
		return nil, nil
	}

	payload := c.Payload
	if c.Encrypted {
		if s.box == nil {
			return nil, fmt.Errorf("case %s is encrypted but no key is configured", c.ID)
		}
		opened, err := s.box.Open(payload)
		if err != nil {
			return nil, fmt.Errorf("opening payload for case %s: %w", c.ID, err)
		}
		payload = opened
	}

	var result domain.CaseResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decoding payload for case %s: %w", c.ID, err)
	}
	return &result, nil
}

// ProcessCase runs the full verification pipeline for one claimed case:
// S3 download, extraction and checks, type inference and authenticity on the
// primary document, then result persistence. The case must already be in
// processing status with Attempts incremented.
func (s *caseService) ProcessCase(ctx context.Context, c *domain.VerificationCase, maxRetries int) {
	primary, err := s.storage.Download(ctx, c.S3Bucket, c.S3Key)
	if err != nil {
		s.failCase(ctx, c, fmt.Sprintf("downloading file: %v", err), maxRetries)
		return
	}
	primaryFile := FileInput{Bytes: primary, ContentType: c.ContentType}

	var result *domain.CaseResult
	if c.PairS3Key != "" {
		pair, derr := s.storage.Download(ctx, c.S3Bucket, c.PairS3Key)
		if derr != nil {
			s.failCase(ctx, c, fmt.Sprintf("downloading pair file: %v", derr), maxRetries)
			return
		}
		result = s.verifier.VerifyPair(ctx, primaryFile, FileInput{Bytes: pair, ContentType: c.PairContentType})
	} else {
		doc := s.verifier.VerifyDocument(ctx, primaryFile, c.DocType)
		result = &domain.CaseResult{FinalStatus: statusFromChecks(doc.Checks)}
		if c.DocType == domain.DocTypeDriversLicense {
			result.License = doc
		} else {
			result.Passport = doc
		}
	}

	typeCheck := s.verifier.CheckType(ctx, primaryFile, c.DocType)
	result.TypeCheck = &typeCheck
	fraud := s.verifier.CheckAuthenticity(ctx, primaryFile, c.DocType)
	result.Fraud = &fraud

	if !typeCheck.Match && result.FinalStatus == domain.CheckPass {
		result.FinalStatus = domain.CheckWarn
	}
	if fraud.IsSuspectedFraud {
		result.FinalStatus = domain.CheckFail
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.failCase(ctx, c, fmt.Sprintf("encoding result: %v", err), maxRetries)
		return
	}
	if s.box != nil {
		sealed, serr := s.box.Seal(payload)
		if serr != nil {
			s.failCase(ctx, c, fmt.Sprintf("sealing result: %v", serr), maxRetries)
			return
		}
		payload = sealed
		c.Encrypted = true
	}

	now := time.Now().UTC()
	c.Status = domain.CaseStatusCompleted
	c.Payload = payload
	c.FinalStatus = result.FinalStatus
	c.LastError = ""
	c.CompletedAt = &now

	if err := s.repo.UpdateResult(ctx, c); err != nil {
		log.Printf("caseService.ProcessCase: failed to save result for %s: %v", c.ID, err)
		return
	}
	log.Printf("caseService.ProcessCase: case %s completed with status %s", c.ID, c.FinalStatus)
}

func (s *caseService) failCase(ctx context.Context, c *domain.VerificationCase, errMsg string, maxRetries int) {
	requeue := c.Attempts < maxRetries
	log.Printf("caseService.failCase: case %s failed (attempt %d, requeue=%t): %s", c.ID, c.Attempts, requeue, errMsg)
	if err := s.repo.MarkFailed(ctx, c.ID, c.Attempts, errMsg, requeue); err != nil {
		log.Printf("caseService.failCase: failed to update status for %s: %v", c.ID, err)
	}
}
