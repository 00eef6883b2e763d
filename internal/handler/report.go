package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/vacation-catalog/backend/internal/domain"
)

// reportCSVHeaders defines the column names written as the first row of the CSV report.
var reportCSVHeaders = []string{"destination", "followers", "follower_count", "start_date", "end_date"}

// GetReports handles GET /admin/reports.
// It returns one row per vacation with its followers. Use ?format=csv to
// receive CSV; default is a JSON array.
func (s *Server) GetReports(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reports.Followers(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "report failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "Failed to fetch reports"})
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeReportCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// writeReportCSV encodes rows as CSV. Followers within a row are
// pipe-separated ("|") to keep each vacation on a single CSV line.
func writeReportCSV(w http.ResponseWriter, rows []domain.ReportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(reportCSVHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write([]string{
			row.Destination,
			strings.Join(row.Followers, "|"),
			strconv.Itoa(row.FollowerCount),
			row.StartDate.UTC().Format(time.RFC3339),
			row.EndDate.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="vacation-followers.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
