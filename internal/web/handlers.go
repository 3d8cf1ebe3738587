package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ticketry/attendee-importer/internal/importer"
	"github.com/ticketry/attendee-importer/internal/logging"
)

// handleHealthz reports service and database health.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ready(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// providerInfo is one entry in the provider catalog.
type providerInfo struct {
	Type    importer.ProviderType `json:"type"`
	Label   string                `json:"label"`
	Columns []string              `json:"columns"`
}

// handleListProviders returns the registered providers and the canonical
// columns each one accepts.
func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	regs := importer.All()
	out := make([]providerInfo, 0, len(regs))
	for _, reg := range regs {
		out = append(out, providerInfo{
			Type:    reg.Type,
			Label:   reg.Label,
			Columns: reg.Columns,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleListRuns returns recent import runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("list runs failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "could not list runs")
		return
	}

	writeJSON(w, r, http.StatusOK, runs)
}

// handleImport accepts a multipart CSV upload and imports it for the
// provider in the URL. Optional form fields:
//
//	event_id   - pin every row to this event, overriding event_name
//	send_email - run-level default for post-creation emails
//	columns    - JSON object remapping CSV headers to canonical columns
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	provider := importer.ProviderType(chi.URLParam(r, "provider"))
	if _, ok := importer.Lookup(provider); !ok {
		writeError(w, r, http.StatusNotFound, "unknown provider")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read upload")
		return
	}

	cfg := importer.Config{
		Provider:          provider,
		SendEmail:         s.cfg.Import.SendEmail,
		SkipExistingUsers: s.cfg.Import.SkipExistingUsers,
		SkipUserCreation:  s.cfg.Import.SkipUserCreation,
	}

	if raw := r.FormValue("event_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, http.StatusBadRequest, "invalid event_id")
			return
		}
		cfg.PinnedEventID = id
	}

	if raw := r.FormValue("send_email"); raw != "" {
		cfg.SendEmail = importer.Truthy(raw)
	}

	if raw := r.FormValue("columns"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Columns); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid columns mapping")
			return
		}
	}

	log := logging.FromContext(r.Context())

	imp, err := importer.New(s.backend, cfg, log)
	if err != nil {
		log.Error("importer setup failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "importer setup failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	result, err := imp.ImportCSV(ctx, data, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrEmptyFile):
			writeError(w, r, http.StatusBadRequest, "file has no rows")
		case errors.Is(err, importer.ErrHeaderNotFound):
			writeError(w, r, http.StatusBadRequest, "no recognizable header row")
		default:
			log.Error("import failed", "error", err)
			writeError(w, r, http.StatusBadRequest, "file could not be parsed")
		}
		return
	}

	if err := s.store.RecordRun(r.Context(), result); err != nil {
		// The import itself succeeded; history is best effort.
		log.Warn("recording run failed", "run_id", result.RunID, "error", err)
	}

	writeJSON(w, r, http.StatusOK, result)
}
