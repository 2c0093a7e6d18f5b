package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/async"
	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/entity"
)

// maxUploadBytes bounds the multipart form; phone photos run large.
const maxUploadBytes = int64(50 << 20)

// handleScan accepts a multipart receipt image and runs it through the
// pipeline. With ?async=1 the request answers 202 with a job the client can
// poll; otherwise it blocks until the record is stored.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.logger.Error("error parsing multipart form", "error", err)
		writeErrorMessage(w, http.StatusBadRequest, "error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer f.Close()

	if header.Size > maxUploadBytes {
		writeErrorMessage(w, http.StatusBadRequest, "file is too large")
		return
	}

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		writeErrorMessage(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported file type %q: expected png, jpg, or jpeg", ext))
		return
	}

	tmpPath, err := s.saveUpload(f, ext)
	if err != nil {
		s.logger.Error("error saving upload", "filename", header.Filename, "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "error saving upload")
		return
	}

	if r.URL.Query().Get("async") == "1" {
		s.scanAsync(w, r, tmpPath)
		return
	}

	defer os.Remove(tmpPath)

	res, err := s.processor.ProcessFile(r.Context(), tmpPath)
	if err != nil {
		s.logger.Error("scan failed", "filename", header.Filename, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.Stored)
}

// scanAsync creates a scan job and hands the stored upload to the queue.
// The worker owns the file from here.
func (s *Server) scanAsync(w http.ResponseWriter, r *http.Request, path string) {
	if s.queue == nil {
		writeErrorMessage(w, http.StatusNotImplemented, "async scanning is not enabled")
		return
	}

	job, err := s.jobs.Create(r.Context(), path)
	if err != nil {
		s.logger.Error("error creating scan job", "error", err)
		writeError(w, err)
		return
	}

	task := async.Task{
		JobID:       job.ID,
		SourcePath:  path,
		SubmittedAt: time.Now(),
		RequestID:   common.RequestIDFromContext(r.Context()),
	}
	if err := s.queue.Enqueue(r.Context(), task); err != nil {
		_ = s.jobs.MarkFailed(r.Context(), job.ID, "queue full")
		writeErrorMessage(w, http.StatusServiceUnavailable, "scan queue is full, try again later")
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) saveUpload(f io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "receiptlens-*."+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, f); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 0)
	offset := intQuery(r, "offset", 0)

	recs, err := s.records.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("error listing records", "error", err)
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*entity.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "id must be a UUID")
		return
	}

	rec, err := s.records.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
			return
		}
		since = &t
	}

	b, err := s.export.ExportXLSX(r.Context(), since)
	if err != nil {
		s.logger.Error("export failed", "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "expenses-"+time.Now().UTC().Format("20060102")+".xlsx"))
	if _, err := w.Write(b); err != nil {
		s.logger.Error("error writing export body", "error", err)
	}
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "id must be a UUID")
		return
	}

	job, err := s.jobs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
