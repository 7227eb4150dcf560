package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"dails-report/internal/clients"
	"dails-report/internal/domain"
	"dails-report/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	exportSetKey = "export_ids"
	exportTTL    = 20 * time.Minute
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrExportNotFound = errors.New("export not found")

// ExportStatus is the progress record kept in redis for one export job.
type ExportStatus struct {
	Key                 string    `json:"key"`
	DeclarationID       int64     `json:"declaration_id"`
	Format              Format    `json:"format"`
	Status              string    `json:"status"`
	Progress            float64   `json:"progress"`
	FileURL             *string   `json:"file_url"`
	FileName            *string   `json:"file_name"`
	EncryptionApplied   bool      `json:"encryption_applied"`
	PasswordInstruction *string   `json:"password_instruction,omitempty"`
	Error               *string   `json:"error,omitempty"`
	Created             time.Time `json:"created_at"`
}

// ExportView is what the API returns for an export.
type ExportView struct {
	ExportStatus
	CreatedAgo string `json:"created_ago"`
}

type StatusStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SAdd(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SRem(ctx context.Context, key string, members ...any) error
}

// FileStore persists a finished report and returns its download URL.
type FileStore interface {
	Put(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

type Notifier interface {
	NotifyExportProgress(ctx context.Context, declarationID int64, exportID string, progress float64, stage string) error
	NotifyExportComplete(ctx context.Context, declarationID int64, exportID string, url string, filename string) error
	NotifyExportFailed(ctx context.Context, declarationID int64, exportID string, errMsg string) error
}

type reportGenerator interface {
	Generate(ctx context.Context, declarationID int64, format Format) (*Report, error)
}

// ExportService generates reports in the background and tracks their progress.
type ExportService struct {
	reports reportGenerator
	redis   StatusStore
	files   FileStore
	ws      Notifier
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	jobs    sync.WaitGroup
}

func NewExportService(
	reports reportGenerator,
	redis StatusStore,
	files FileStore,
	ws Notifier,
	log *zap.Logger,
	m *metrics.Metrics,
) *ExportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportService{
		reports: reports,
		redis:   redis,
		files:   files,
		ws:      ws,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// StartExport records a pending export and runs it in the background.
func (s *ExportService) StartExport(ctx context.Context, declarationID int64, format Format) (string, error) {
	if s.redis == nil {
		return "", errors.New("redis client not configured")
	}

	exportID := fmt.Sprintf("exports:%s", uuid.NewString())
	status := &ExportStatus{
		Key:           exportID,
		DeclarationID: declarationID,
		Format:        format,
		Status:        StatusPending,
		Created:       s.now(),
	}
	if err := s.saveExportStatus(ctx, status); err != nil {
		return "", fmt.Errorf("save export status: %w", err)
	}

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		s.runExport(context.WithoutCancel(ctx), status)
	}()

	return exportID, nil
}

// Wait blocks until every running export has finished.
func (s *ExportService) Wait() {
	s.jobs.Wait()
}

func (s *ExportService) runExport(ctx context.Context, status *ExportStatus) {
	log := s.log.With(zap.String("export_id", status.Key), zap.Int64("declaration_id", status.DeclarationID))
	log.Info("export started", zap.String("format", string(status.Format)))

	s.progress(ctx, status, 0, StatusRunning, "loading")

	rep, err := s.reports.Generate(ctx, status.DeclarationID, status.Format)
	if err != nil {
		s.fail(ctx, log, status, err)
		return
	}
	s.progress(ctx, status, 50, StatusRunning, "rendered")

	if s.files == nil {
		s.fail(ctx, log, status, errors.New("file storage not configured"))
		return
	}
	s.progress(ctx, status, 95, StatusRunning, "uploading")

	url, err := s.files.Put(ctx, rep.FileName, rep.ContentType, rep.Data)
	if err != nil {
		s.fail(ctx, log, status, fmt.Errorf("store report: %w", err))
		return
	}

	status.FileURL = &url
	status.FileName = &rep.FileName
	status.EncryptionApplied = rep.EncryptionApplied
	status.PasswordInstruction = rep.PasswordInstruction
	s.progress(ctx, status, 100, StatusCompleted, "ready")
	if s.ws != nil {
		_ = s.ws.NotifyExportComplete(ctx, status.DeclarationID, status.Key, url, rep.FileName)
	}

	s.metrics.IncExport(StatusCompleted)
	log.Info("export completed", zap.Bool("encryption_applied", rep.EncryptionApplied))
}

func (s *ExportService) progress(ctx context.Context, status *ExportStatus, progress float64, state, stage string) {
	status.Progress = progress
	status.Status = state
	if err := s.saveExportStatus(ctx, status); err != nil {
		s.log.Warn("failed to save export status", zap.String("export_id", status.Key), zap.Error(err))
	}
	if s.ws != nil {
		_ = s.ws.NotifyExportProgress(ctx, status.DeclarationID, status.Key, progress, stage)
	}
}

func (s *ExportService) fail(ctx context.Context, log *zap.Logger, status *ExportStatus, err error) {
	msg := err.Error()
	if errors.Is(err, domain.ErrNotFound) {
		msg = domain.ErrNotFound.Error()
	}
	status.Status = StatusFailed
	status.Error = &msg
	if serr := s.saveExportStatus(ctx, status); serr != nil {
		log.Warn("failed to save export status", zap.Error(serr))
	}
	if s.ws != nil {
		_ = s.ws.NotifyExportFailed(ctx, status.DeclarationID, status.Key, msg)
	}
	s.metrics.IncExport(StatusFailed)
	log.Error("export failed", zap.Error(err))
}

func (s *ExportService) saveExportStatus(ctx context.Context, st *ExportStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}

	return s.redis.SAdd(ctx, exportSetKey, st.Key)
}

// GetExports lists the exports of one declaration, newest first. Expired
// entries are dropped from the index as they are found.
func (s *ExportService) GetExports(ctx context.Context, declarationID int64) ([]ExportView, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	keys, err := s.redis.SMembers(ctx, exportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get export keys: %w", err)
	}

	var statuses []ExportStatus
	for _, key := range keys {
		data, err := s.redis.Get(ctx, key)
		if clients.IsMissing(err) {
			_ = s.redis.SRem(ctx, exportSetKey, key)
			continue
		}
		if err != nil {
			continue
		}

		var status ExportStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			continue
		}

		if status.DeclarationID == declarationID {
			statuses = append(statuses, status)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	views := make([]ExportView, 0, len(statuses))
	for _, status := range statuses {
		views = append(views, ExportView{ExportStatus: status, CreatedAgo: humanizeAgo(s.now(), status.Created)})
	}

	return views, nil
}

func (s *ExportService) GetExport(ctx context.Context, exportID string) (*ExportView, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	data, err := s.redis.Get(ctx, exportID)
	if clients.IsMissing(err) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read export status: %w", err)
	}

	var status ExportStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to parse export status: %w", err)
	}

	return &ExportView{ExportStatus: status, CreatedAgo: humanizeAgo(s.now(), status.Created)}, nil
}

func humanizeAgo(now, t time.Time) string {
	if t.After(now) {
		return "just now"
	}

	minutes := int(now.Sub(t).Minutes())
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d %s ago", minutes, plural(minutes, "minute", "minutes"))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour", "hours"))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d %s ago", days, plural(days, "day", "days"))
	}
	return t.Format("2006-01-02 15:04")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
