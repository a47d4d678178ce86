package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/pipeline"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
	"github.com/ginjaninja78/payroll-bank-splitter/pkg/utils"
)

// handleHealth reports liveness and the session id.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":     "ok",
		"session_id": s.pipeline.Store().SessionID(),
	})
}

// =============================================================================
// STAGE HANDLERS
// =============================================================================

// handleSplit reads the multipart "file" field and runs the split stage.
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	table, err := pipeline.DecodeTable(header.Filename, data, s.cfg.Input.Sheet)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.pipeline.Split(r.Context(), table)
	if err != nil {
		respondStageError(w, r, err, report)
		return
	}
	writeJSON(w, report)
}

// handleSummary runs the summary stage.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.pipeline.Summary(r.Context())
	if err != nil {
		respondStageError(w, r, err, report)
		return
	}
	writeJSON(w, report)
}

// handleConvert runs the convert stage.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.pipeline.Convert(r.Context())
	if err != nil {
		respondStageError(w, r, err, report)
		return
	}
	writeJSON(w, report)
}

// handleDeleteText removes the .txt files of the session.
func (s *Server) handleDeleteText(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.pipeline.DeleteText(r.Context())
	writeJSON(w, map[string]any{
		"deleted":  report.Deleted,
		"warnings": report.Warnings,
	})
}

// =============================================================================
// ARTIFACT HANDLERS
// =============================================================================

// artifactInfo is one entry of the artifact listing.
type artifactInfo struct {
	Name   string           `json:"name"`
	Stage  string           `json:"stage"`
	Size   int              `json:"size"`
	Bank   string           `json:"bank,omitempty"`
	Branch string           `json:"branch,omitempty"`
	Rows   int              `json:"rows,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// stageParam reads the optional ?stage= filter. Empty means every stage.
func stageParam(r *http.Request) (types.Stage, error) {
	name := r.URL.Query().Get("stage")
	if name == "" || name == "all" {
		return 0, nil
	}
	stage := types.ParseStage(name)
	if stage == 0 {
		return 0, fmt.Errorf("unknown stage %q", name)
	}
	return stage, nil
}

// handleListArtifacts lists the artifacts of a stage.
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	stage, err := stageParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	artifacts := s.pipeline.Store().List(stage)
	s.mu.Unlock()

	out := make([]artifactInfo, 0, len(artifacts))
	for _, a := range artifacts {
		info := artifactInfo{Name: a.Name, Stage: a.Stage.String(), Size: a.Size()}
		if a.Meta != nil {
			amount := a.Meta.Amount
			info.Bank = a.Meta.BankName
			info.Branch = a.Meta.Branch
			info.Rows = a.Meta.Rows
			info.Amount = &amount
		}
		out = append(out, info)
	}

	writeJSON(w, out)
}

// handleDownloadArtifact streams one artifact.
func (s *Server) handleDownloadArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	a, ok := s.pipeline.Store().Get(name)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	writeAttachment(w, a.Name, contentType(a.Name), a.Content)
}

// handleBundle zips the artifacts of a stage.
func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	stage, err := stageParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	artifacts := s.pipeline.Store().List(stage)
	s.mu.Unlock()

	if len(artifacts) == 0 {
		writeError(w, http.StatusNotFound, "no files to bundle")
		return
	}

	now := s.now()
	data, err := utils.Bundle(artifacts, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build bundle")
		return
	}

	writeAttachment(w, utils.BundleName(stage, now), "application/zip", data)
}

// writeAttachment writes a file download response.
func writeAttachment(w http.ResponseWriter, name, ctype string, data []byte) {
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// contentType picks the MIME type from the file extension.
func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
