// Package admin serves the authenticated read view over stored submissions.
package admin

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/corstar/site-intake/internal/http/middleware"
	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/leads"
	"github.com/corstar/site-intake/pkg/logging"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Handler lists, exports, and archives submissions.
type Handler struct {
	repo     leads.Repository
	archiver *Archiver
	logger   *logging.Logger
	now      func() time.Time
}

func NewHandler(repo leads.Repository, archiver *Archiver, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("admin: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:     repo,
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
	}
}

// ListResponse mirrors the dashboard's data and count pair.
type ListResponse struct {
	Data  []*leads.Record `json:"data"`
	Count int             `json:"count"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type badRequest string

func (e badRequest) Error() string { return string(e) }

// parseFilter reads table and intent query parameters.
func parseFilter(r *http.Request) (leads.ListFilter, error) {
	q := r.URL.Query()
	filter := leads.ListFilter{Table: inquiry.TableInquiries}

	if table := strings.TrimSpace(q.Get("table")); table != "" {
		if table != inquiry.TableInquiries && table != inquiry.TableLeads {
			return filter, badRequest("Invalid table")
		}
		filter.Table = table
	}
	if raw := strings.TrimSpace(q.Get("intent")); raw != "" {
		intent, err := inquiry.ParseIntent(raw)
		if err != nil {
			return filter, badRequest("Invalid intent type")
		}
		if filter.Table == inquiry.TableLeads {
			return filter, badRequest("Intent filter is not supported for leads")
		}
		filter.Intent = intent
	}
	return filter, nil
}

// MaxPage bounds the page number so the row offset stays well inside an int.
const MaxPage = 1_000_000

func positiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badRequest("Invalid pagination")
	}
	return n, nil
}

func writeFilterError(w http.ResponseWriter, err error) {
	var br badRequest
	if errors.As(err, &br) {
		middleware.WriteError(w, http.StatusBadRequest, string(br))
		return
	}
	middleware.WriteError(w, http.StatusInternalServerError, middleware.UnexpectedErrorMessage)
}

// List handles GET /functions/v1/admin-data.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	page, err := positiveInt(r.URL.Query().Get("page"), 1)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	limit, err := positiveInt(r.URL.Query().Get("limit"), DefaultPageSize)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page > MaxPage {
		writeFilterError(w, badRequest("Invalid pagination"))
		return
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	records, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("admin: list failed", "error", err, "table", filter.Table)
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load data")
		return
	}
	if records == nil {
		records = []*leads.Record{}
	}
	middleware.WriteJSON(w, http.StatusOK, ListResponse{Data: records, Count: total, Page: page, Limit: limit})
}

func exportLabel(filter leads.ListFilter) string {
	if filter.Table == inquiry.TableLeads {
		return "leads"
	}
	if filter.Intent == "" {
		return "all"
	}
	return string(filter.Intent)
}

// Export handles GET /functions/v1/admin-data/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}

	var buf bytes.Buffer
	if _, err := WriteCSV(r.Context(), &buf, h.repo, filter); err != nil {
		h.logger.Error("admin: export failed", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename(exportLabel(filter), h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Archive handles POST /functions/v1/admin-data/archive.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	if !h.archiver.Enabled() {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Export archive is not configured")
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}

	var buf bytes.Buffer
	rows, err := WriteCSV(r.Context(), &buf, h.repo, filter)
	if err != nil {
		h.logger.Error("admin: archive export failed", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}

	entry := ManifestEntry{Label: exportLabel(filter), Rows: rows}
	if claims, ok := middleware.AdminClaimsFromContext(r.Context()); ok {
		entry.ArchivedBy = claims.Subject
	}
	key, err := h.archiver.Put(r.Context(), entry, buf.Bytes(), h.now())
	if err != nil {
		h.logger.Error("admin: archive upload failed", "error", err)
		middleware.WriteError(w, http.StatusBadGateway, "Failed to archive export")
		return
	}
	h.logger.Info("admin: export archived", "key", key, "rows", rows)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"key": key, "rows": rows})
}
