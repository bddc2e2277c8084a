package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/helmsleads/stocktake/internal/recon"
	"github.com/helmsleads/stocktake/internal/store"
)

// handleParse analyzes an uploaded spreadsheet and returns the preview.
// The parse phase persists nothing; it either returns a full preview or
// a single structured rejection.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, errors.New("file too large or invalid form"), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	// Mode is a required input; Parse rejects the zero value.
	mode := recon.ImportMode(strings.ToLower(r.FormValue("importType")))

	result, err := s.service.Parse(r.Context(), recon.ParseRequest{
		Filename:   header.Filename,
		Data:       data,
		Mode:       mode,
		LocationID: r.FormValue("locationId"),
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, result)
}

// handleApply commits a confirmed preview as one auditable batch.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req recon.ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, errors.New("invalid request body"), http.StatusBadRequest)
		return
	}

	// Apply is not cancellable mid-run: a client disconnect must not
	// abort half-committed inventory writes.
	ctx := withRequestMetadata(context.WithoutCancel(r.Context()), r)

	result, err := s.service.Apply(ctx, req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, result)
}

// importResponse is the JSON shape of a persisted import record.
// Discrepancies, errors, and applied rows are stored as JSON and pass
// through unparsed.
type importResponse struct {
	ID               string          `json:"id"`
	Filename         string          `json:"filename"`
	Format           string          `json:"format"`
	Mode             string          `json:"mode"`
	LocationID       string          `json:"locationId,omitempty"`
	Status           string          `json:"status"`
	Notes            string          `json:"notes,omitempty"`
	ProductsCreated  int             `json:"productsCreated"`
	ProductsUpdated  int             `json:"productsUpdated"`
	InventoryUpdated int             `json:"inventoryUpdated"`
	RowsSkipped      int             `json:"rowsSkipped"`
	Discrepancies    json.RawMessage `json:"discrepancies"`
	Errors           json.RawMessage `json:"errors"`
	AppliedRows      json.RawMessage `json:"appliedRows"`
	CreatedAt        time.Time       `json:"createdAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

// handleGetImport returns the durable audit record for one import.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	rec, err := s.service.GetImport(r.Context(), importID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, importResponse{
		ID:               rec.ID,
		Filename:         rec.Filename,
		Format:           rec.Format,
		Mode:             rec.Mode,
		LocationID:       rec.LocationID,
		Status:           rec.Status,
		Notes:            rec.Notes,
		ProductsCreated:  rec.ProductsCreated,
		ProductsUpdated:  rec.ProductsUpdated,
		InventoryUpdated: rec.InventoryUpdated,
		RowsSkipped:      rec.RowsSkipped,
		Discrepancies:    rec.Discrepancies,
		Errors:           rec.Errors,
		AppliedRows:      rec.AppliedRows,
		CreatedAt:        rec.CreatedAt,
		CompletedAt:      rec.CompletedAt,
	})
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, recon.UserMessage{
			Code:    "DB002",
			Message: "database unreachable",
		})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// statusFor picks an HTTP status from the mapped error code family.
func statusFor(err error) int {
	if errors.Is(err, store.ErrImportNotFound) {
		return http.StatusNotFound
	}
	code := recon.MapError(err).Code
	switch {
	case strings.HasPrefix(code, "FILE"), strings.HasPrefix(code, "VAL"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "DB"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// withRequestMetadata records caller IP and User-Agent for activity
// logging during apply.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = recon.ContextWithIPAddress(ctx, r.RemoteAddr)
	ctx = recon.ContextWithUserAgent(ctx, r.Header.Get("User-Agent"))
	return ctx
}
