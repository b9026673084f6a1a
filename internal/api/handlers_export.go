package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/ignite/outreach-monitor/internal/pkg/httputil"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
	"github.com/ignite/outreach-monitor/internal/report"
)

// ExportCSV streams the aggregation as a CSV download. When an S3
// archive is configured the export is also persisted, and the object
// key is exposed in a response header.
//
//	GET /api/export/csv?sender_id=&start_date=&end_date=
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		httputil.BadRequest(w, "dates must be formatted YYYY-MM-DD")
		return
	}

	result := h.aggregate(r.Context(), r.URL.Query().Get("sender_id"), start, end)

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, result); err != nil {
		httputil.InternalError(w, err)
		return
	}

	filename := report.Filename(result.StartDate, result.EndDate)

	if h.archive != nil {
		key, err := h.archive.Store(r.Context(), filename, buf.Bytes())
		if err != nil {
			logger.Warn("csv archive failed", "filename", filename, "error", err.Error())
		} else {
			w.Header().Set("X-Archive-Key", key)
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
