package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
)

// exportCSV streams the filtered result set as a CSV attachment. The same
// Query call backs the listing endpoint, so an export always matches what the
// caller was shown for the same filter parameters. Responses are
// pgzip-compressed when the client accepts gzip.
func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sales, err := h.svc.Query(r.Context(), criteria)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales_export.csv"`)

	var out io.Writer = w
	if acceptsGzip(r) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := pgzip.NewWriter(w)
		defer func() {
			if err := gz.Close(); err != nil {
				zctx.From(r.Context()).Error("close gzip writer", zap.Error(err))
			}
		}()
		out = gz
	}

	if err := h.svc.WriteCSV(r.Context(), out, sales); err != nil {
		// Headers are gone; the best we can do is log.
		zctx.From(r.Context()).Error("write csv export", zap.Error(err))
	}
}

func acceptsGzip(r *http.Request) bool {
	for _, encoding := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.TrimSpace(encoding) == "gzip" {
			return true
		}
	}
	return false
}
