package admin

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/corstar/site-intake/internal/leads"
)

var csvHeader = []string{
	"id", "created_at", "intent", "source", "full_name", "email", "phone",
	"company", "location", "service", "timeline", "budget_range", "details",
}

// exportPageSize is the repository page size used while streaming an export.
const exportPageSize = 100

// ExportFilename names a CSV export the way the dashboard download does.
func ExportFilename(label string, now time.Time) string {
	return fmt.Sprintf("inquiries-%s-%s.csv", label, now.UTC().Format("2006-01-02"))
}

// WriteCSV pages through repo and writes every matching record to w.
func WriteCSV(ctx context.Context, w io.Writer, repo leads.Repository, filter leads.ListFilter) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("admin: write csv header: %w", err)
	}

	filter.Limit = exportPageSize
	filter.Offset = 0
	written := 0
	for {
		page, total, err := repo.List(ctx, filter)
		if err != nil {
			return written, fmt.Errorf("admin: list for export: %w", err)
		}
		for _, rec := range page {
			if err := cw.Write(csvRow(rec)); err != nil {
				return written, fmt.Errorf("admin: write csv row: %w", err)
			}
			written++
		}
		filter.Offset += len(page)
		if len(page) == 0 || filter.Offset >= total {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("admin: flush csv: %w", err)
	}
	return written, nil
}

func csvRow(rec *leads.Record) []string {
	return []string{
		rec.ID,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.Intent,
		rec.Source,
		rec.FullName,
		rec.Email,
		rec.Phone,
		rec.Company,
		rec.Location,
		rec.Service,
		rec.Timeline,
		rec.BudgetRange,
		rec.Details,
	}
}
