package rest

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"dails-report/internal/service"

	"github.com/goccy/go-json"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseDeclarationID accepts a positive integer id.
func ParseDeclarationID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Field: "declaration_id", Message: "declaration_id is required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Field: "declaration_id", Message: "declaration_id must be a positive integer"}
	}
	return id, nil
}

type ExportRequest struct {
	Format service.Format `json:"format"`
}

type rawExportRequest struct {
	Format any `json:"format"`
}

// ValidateExportRequest reads the format from the query string, falling back to
// an optional JSON body.
func ValidateExportRequest(r *http.Request) (*ExportRequest, error) {
	format := r.URL.Query().Get("format")

	if format == "" && r.Body != nil {
		var raw rawExportRequest
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
			return nil, &ValidationError{Field: "body", Message: "invalid JSON"}
		}
		switch v := raw.Format.(type) {
		case nil:
		case string:
			format = v
		default:
			return nil, &ValidationError{Field: "format", Message: "format must be a string"}
		}
	}

	f, err := service.ParseFormat(format)
	if err != nil {
		return nil, &ValidationError{Field: "format", Message: "format must be pdf or xlsx"}
	}
	return &ExportRequest{Format: f}, nil
}
