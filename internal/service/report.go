package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"dails-report/internal/domain"
	"dails-report/internal/metrics"
	"dails-report/internal/normalize"
	"dails-report/internal/protect"
	"dails-report/internal/reconcile"
	"dails-report/internal/render"

	"go.uber.org/zap"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "pdf" and "xlsx"; empty means pdf.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

const PasswordInstruction = "This PDF is password protected. Use your National ID number as the password."

// Report is a finished document plus what the caller needs to tell the user.
type Report struct {
	DeclarationID       int64
	Data                []byte
	FileName            string
	ContentType         string
	Password            *string
	EncryptionApplied   bool
	PasswordInstruction *string
}

type ReportService struct {
	agg       *Aggregator
	protector *protect.Protector
	pdf       *render.PDFRenderer
	opts      render.Options
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewReportService(
	agg *Aggregator,
	protector *protect.Protector,
	opts render.Options,
	log *zap.Logger,
	m *metrics.Metrics,
) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	pdf := render.NewPDFRenderer()
	if opts.Organisation != "" {
		pdf.Author = opts.Organisation
	}
	return &ReportService{
		agg:       agg,
		protector: protector,
		pdf:       pdf,
		opts:      opts,
		log:       log,
		metrics:   m,
	}
}

// Generate runs the whole pipeline for one declaration. It returns either a
// complete document or domain.ErrNotFound / *domain.StorageError.
func (s *ReportService) Generate(ctx context.Context, declarationID int64, format Format) (*Report, error) {
	start := time.Now()
	rep, err := s.generate(ctx, declarationID, format)

	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	s.metrics.IncReport(string(format), outcome)
	s.metrics.ObserveGenerate(string(format), time.Since(start))

	return rep, err
}

func (s *ReportService) generate(ctx context.Context, declarationID int64, format Format) (*Report, error) {
	bundle, err := s.agg.Load(ctx, declarationID)
	if err != nil {
		return nil, err
	}

	d := bundle.Declaration
	nationalID := strings.TrimSpace(d.NationalIDValue())
	resolved := reconcile.Resolve(BuildResolveInput(bundle))

	s.log.Debug("declaration resolved",
		zap.Int64("declaration_id", declarationID),
		zap.String("rule", resolved.Rule),
		zap.Int("sections", len(resolved.Sections)),
		zap.Int("root_incomes", len(resolved.Root.Incomes)),
		zap.Int("root_assets", len(resolved.Root.Assets)),
		zap.Int("root_liabilities", len(resolved.Root.Liabilities)),
	)

	willProtect := s.protector.WillAttempt(nationalID)
	opts := s.opts
	opts.Protected = willProtect && format == FormatPDF
	doc := render.Compose(render.Input{Declaration: d, Sections: resolved.Sections}, opts)

	rep := &Report{DeclarationID: declarationID}

	switch format {
	case FormatXLSX:
		wb := &render.WorkbookRenderer{}
		if willProtect {
			wb.Password = nationalID
		}
		data, applied, err := wb.RenderProtected(doc)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", wb.Extension(), err)
		}
		rep.Data = data
		rep.FileName = FileName(nationalID, wb.Extension())
		rep.ContentType = wb.ContentType()
		switch {
		case applied:
			pw := nationalID
			rep.Password = &pw
			rep.EncryptionApplied = true
			s.metrics.IncProtection(protect.OutcomeApplied)
		case willProtect:
			s.log.Warn("workbook left unprotected", zap.Int64("declaration_id", declarationID))
			s.metrics.IncProtection(protect.OutcomeFailed)
		}
	default:
		data, err := s.pdf.Render(doc)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", s.pdf.Extension(), err)
		}
		rep.FileName = FileName(nationalID, s.pdf.Extension())
		rep.ContentType = s.pdf.ContentType()

		res := s.protector.Protect(ctx, data, nationalID)
		if res.Outcome == protect.OutcomeFailed {
			// the page header was composed before protection ran
			s.log.Warn("report left unprotected",
				zap.Int64("declaration_id", declarationID),
				zap.Bool("password_banner", doc.Banner != ""),
			)
		}
		rep.Data = res.Data
		rep.Password = res.Password
		rep.EncryptionApplied = res.Applied
	}

	if rep.EncryptionApplied {
		instruction := PasswordInstruction
		rep.PasswordInstruction = &instruction
	}

	return rep, nil
}

// BuildResolveInput normalizes every raw source in the bundle.
func BuildResolveInput(b domain.Bundle) reconcile.Input {
	d := b.Declaration
	in := reconcile.Input{
		DeclarantName:   declarantName(d),
		DeclarationDate: domain.StrValue(d.DeclarationDate),
		PeriodStart:     domain.StrValue(d.PeriodStart),
		PeriodEnd:       domain.StrValue(d.PeriodEnd),
		Root:            normalize.Holdings(d.BiennialIncome, d.Assets, d.Liabilities),
	}

	for _, fd := range b.Legacy {
		in.Legacy = append(in.Legacy, reconcile.LegacyEntry{
			ID:              fd.ID,
			Kind:            domain.ParseMemberKind(fd.MemberType),
			Name:            strings.TrimSpace(domain.StrValue(fd.MemberName)),
			DeclarationDate: domain.StrValue(fd.DeclarationDate),
			PeriodStart:     domain.StrValue(fd.PeriodStart),
			PeriodEnd:       domain.StrValue(fd.PeriodEnd),
			Note:            domain.StrValue(fd.Note),
			CreatedAt:       fd.CreatedAt,
			Holdings:        normalize.Legacy(fd.Items),
		})
	}

	member := func(m domain.HouseholdMember) reconcile.Member {
		return reconcile.Member{
			Kind:     m.Kind,
			Name:     m.DisplayName(),
			Holdings: normalize.Holdings(m.BiennialIncome, m.Assets, m.Liabilities),
		}
	}
	for _, m := range b.Spouses {
		in.Spouses = append(in.Spouses, member(m))
	}
	for _, m := range b.Children {
		in.Children = append(in.Children, member(m))
	}

	return in
}

func declarantName(d domain.Declaration) string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{d.FirstName, d.OtherNames, d.Surname} {
		if v := strings.TrimSpace(domain.StrValue(p)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// FileName builds "<national id> DAILs Form.<ext>" with the id reduced to
// filename-safe characters.
func FileName(nationalID, ext string) string {
	safe := unsafeFileChars.ReplaceAllString(strings.TrimSpace(nationalID), "_")
	if safe == "" {
		safe = "declaration"
	}
	return safe + " DAILs Form." + ext
}
