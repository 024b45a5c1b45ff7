package service

import (
	"context"
	"sync"

	"veridoc/internal/domain"
	"veridoc/internal/extract"
	"veridoc/internal/verify"
)

// FileInput is one uploaded document image or PDF.
type FileInput struct {
	Bytes       []byte
	ContentType string
}

// VerificationService runs the extraction and verification pipeline. Its
// operations never return errors: model and parse failures degrade to empty
// records and warn-level checks instead of failing the request.
type VerificationService interface {
	VerifyDocument(ctx context.Context, file FileInput, docType domain.DocumentType) *domain.DocumentResult
	VerifyPair(ctx context.Context, passport, license FileInput) *domain.CaseResult
	CheckType(ctx context.Context, file FileInput, declared domain.DocumentType) domain.TypeInferenceResult
	CheckAuthenticity(ctx context.Context, file FileInput, docType domain.DocumentType) domain.AuthenticityVerdict
}

type verificationService struct {
	extractor   *extract.Extractor
	validator   *verify.Validator
	consistency *verify.ConsistencyChecker
	typeInfer   *verify.TypeInferencer
	assessor    *verify.Assessor
}

// NewVerificationService creates a new VerificationService implementation.
func NewVerificationService(
	extractor *extract.Extractor,
	validator *verify.Validator,
	consistency *verify.ConsistencyChecker,
	typeInfer *verify.TypeInferencer,
	assessor *verify.Assessor,
) VerificationService {
	return &verificationService{
		extractor:   extractor,
		validator:   validator,
		consistency: consistency,
		typeInfer:   typeInfer,
		assessor:    assessor,
	}
}

func (s *verificationService) VerifyDocument(ctx context.Context, file FileInput, docType domain.DocumentType) *domain.DocumentResult {
	rec := s.extractor.Extract(ctx, file.Bytes, file.ContentType, docType)
	return &domain.DocumentResult{
		DocType:   docType,
		Model:     s.extractor.ModelName(),
		Extracted: rec,
		Checks:    s.validator.Validate(rec, docType),
	}
}

// VerifyPair extracts both documents concurrently, validates each, and runs
// cross-document consistency checks.
func (s *verificationService) VerifyPair(ctx context.Context, passport, license FileInput) *domain.CaseResult {
	var wg sync.WaitGroup
	var passportResult, licenseResult *domain.DocumentResult

	wg.Add(2)
	go func() {
		defer wg.Done()
		passportResult = s.VerifyDocument(ctx, passport, domain.DocTypePassport)
	}()
	go func() {
		defer wg.Done()
		licenseResult = s.VerifyDocument(ctx, license, domain.DocTypeDriversLicense)
	}()
	wg.Wait()

	result := &domain.CaseResult{
		Passport:    passportResult,
		License:     licenseResult,
		Consistency: s.consistency.Check(ctx, passportResult.Extracted, licenseResult.Extracted),
	}
	result.FinalStatus = statusFromChecks(result.AllChecks())
	return result
}

func (s *verificationService) CheckType(ctx context.Context, file FileInput, declared domain.DocumentType) domain.TypeInferenceResult {
	return s.typeInfer.Infer(ctx, file.Bytes, file.ContentType, declared)
}

func (s *verificationService) CheckAuthenticity(ctx context.Context, file FileInput, docType domain.DocumentType) domain.AuthenticityVerdict {
	return s.assessor.Assess(ctx, file.Bytes, file.ContentType, docType)
}

// statusFromChecks folds check results into a single status: any fail wins,
// then any warn, otherwise pass.
func statusFromChecks(checks []domain.CheckResult) domain.CheckStatus {
	status := domain.CheckPass
	for _, c := range checks {
		switch c.Status {
		case domain.CheckFail:
			return domain.CheckFail
		case domain.CheckWarn:
			status = domain.CheckWarn
		}
	}
	return status
}
