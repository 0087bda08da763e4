package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/qhuube/vatreport/internal/core"
	"github.com/qhuube/vatreport/internal/logging"
	vatmail "github.com/qhuube/vatreport/internal/mail"
	"github.com/qhuube/vatreport/internal/report"
	"github.com/qhuube/vatreport/internal/schema"
)

// FileResult is the per-file outcome of a validation request.
type FileResult struct {
	FileName         string                 `json:"file_name"`
	SessionID        string                 `json:"session_id,omitempty"`
	Success          bool                   `json:"success"`
	HasIssues        bool                   `json:"has_issues"`
	ValidationResult *core.ValidationResult `json:"validation_result,omitempty"`
	Message          string                 `json:"message,omitempty"`
}

// ManualReviewResponse is returned when enrichment was blocked because some
// rows matched no VAT rule.
type ManualReviewResponse struct {
	ManualReviewRequired bool                `json:"manual_review_required"`
	Count                int                 `json:"manual_review_count"`
	Rows                 []map[string]string `json:"rows"`
	Message              string              `json:"message"`
}

// handleValidate accepts one or more uploaded files, validates each, and
// opens a session per successfully parsed file.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, r, http.StatusBadRequest, errors.New("no files provided"))
		return
	}
	if len(files) > s.cfg.Upload.MaxFiles {
		writeError(w, r, http.StatusBadRequest,
			fmt.Errorf("too many files: %d exceeds the limit of %d", len(files), s.cfg.Upload.MaxFiles))
		return
	}

	results := make([]FileResult, 0, len(files))
	for _, header := range files {
		results = append(results, s.validateOne(r, header))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) validateOne(r *http.Request, header *multipart.FileHeader) FileResult {
	result := FileResult{FileName: header.Filename}

	if header.Size > s.cfg.Upload.MaxFileSize {
		result.Message = fmt.Sprintf("file exceeds the %d byte limit", s.cfg.Upload.MaxFileSize)
		return result
	}

	f, err := header.Open()
	if err != nil {
		result.Message = "could not read the uploaded file"
		return result
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.Upload.MaxFileSize+1))
	if err != nil {
		result.Message = "could not read the uploaded file"
		return result
	}
	if int64(len(data)) > s.cfg.Upload.MaxFileSize {
		result.Message = fmt.Sprintf("file exceeds the %d byte limit", s.cfg.Upload.MaxFileSize)
		return result
	}

	table, validation, err := s.service.Validate(r.Context(), header.Filename, data)
	if err != nil {
		logging.ForUpload(r.Context(), header.Filename, "").Warn("validation failed", "error", err)
		result.Message = err.Error()
		return result
	}

	sess := s.sessions.Create(header.Filename, data, table, validation)
	result.SessionID = sess.ID
	result.Success = true
	result.HasIssues = validation.HasIssues()
	result.ValidationResult = validation
	if result.HasIssues {
		result.Message = "validation found issues; see validation_result"
	} else {
		result.Message = "file is valid"
	}
	return result
}

// handleIssuesWorkbook serves the annotated workbook for a validated
// session.
func (s *Server) handleIssuesWorkbook(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, err := report.AnnotatedWorkbook(sess.Table, sess.Validation)
	if err != nil {
		respondError(w, r, fmt.Errorf("build annotated workbook: %w", err))
		return
	}

	name := report.BaseName(sess.FileName) + "_Validation_Issues.xlsx"
	serveArtifact(w, report.Artifact{Name: name, ContentType: report.ContentTypeXLSX, Data: data})
}

// handleDownload enriches the session's table and serves the report bundle,
// or the manual-review payload when enrichment is blocked.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.Enrich(r.Context(), sess.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if result.ManualReview != nil {
		writeJSON(w, http.StatusOK, s.manualReviewResponse(r, result.ManualReview))
		return
	}

	labels, err := s.service.FieldLabels(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	bundle, err := report.Bundle(sess.FileName, result.Report, labels)
	if err != nil {
		respondError(w, r, fmt.Errorf("build report bundle: %w", err))
		return
	}
	serveArtifact(w, bundle)
}

type emailRequest struct {
	Email string `json:"email"`
}

// handleEmailReport enriches the session's table and emails the bundle to
// the requested address in the background. Delivery is fire-and-forget; the
// response only confirms the report was built and queued.
func (s *Server) handleEmailReport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode request body: %w", err))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid email address %q", req.Email))
		return
	}

	result, err := s.service.Enrich(r.Context(), sess.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if result.ManualReview != nil {
		writeJSON(w, http.StatusOK, s.manualReviewResponse(r, result.ManualReview))
		return
	}

	labels, err := s.service.FieldLabels(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	bundle, err := report.Bundle(sess.FileName, result.Report, labels)
	if err != nil {
		respondError(w, r, fmt.Errorf("build report bundle: %w", err))
		return
	}

	logger := logging.ForUpload(r.Context(), sess.FileName, sess.ID)
	msg := vatmail.ReportMessage(req.Email, sess.FileName, bundle)
	// Delivery outlives the HTTP response, so the context must survive the
	// request ending.
	sendCtx := context.WithoutCancel(r.Context())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sender.Send(sendCtx, msg); err != nil {
			logger.Error("report email delivery failed", "to", req.Email, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": fmt.Sprintf("report for %s queued for delivery to %s", sess.FileName, req.Email),
	})
}

// handleManualReview notifies the admin inbox about rows that need manual
// resolution, with the flagged workbook attached.
func (s *Server) handleManualReview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.Enrich(r.Context(), sess.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if result.ManualReview == nil {
		writeError(w, r, http.StatusBadRequest, errors.New("no rows need manual review for this session"))
		return
	}

	labels, err := s.service.FieldLabels(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	workbook, err := report.ManualReviewWorkbook(result.ManualReview, labels)
	if err != nil {
		respondError(w, r, fmt.Errorf("build manual review workbook: %w", err))
		return
	}

	artifact := report.Artifact{
		Name:        report.BaseName(sess.FileName) + "_Manual_Review.xlsx",
		ContentType: report.ContentTypeXLSX,
		Data:        workbook,
	}
	msg := vatmail.ManualReviewMessage(s.cfg.Mail.AdminTo, sess.FileName, result.ManualReview, artifact)
	if err := s.sender.Send(r.Context(), msg); err != nil {
		respondError(w, r, fmt.Errorf("send manual review notification: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":             "manual review notification sent",
		"manual_review_count": result.ManualReview.Count(),
	})
}

type notifyQuarterRequest struct {
	SessionID string `json:"session_id"`
}

// handleNotifyQuarterIssues emails the admin a digest of order dates outside
// the accepted quarter, with the highlighted workbook and original upload
// attached. A best-effort side notification: delivery failure is logged but
// reported as a success to keep the primary flow unaffected.
func (s *Server) handleNotifyQuarterIssues(w http.ResponseWriter, r *http.Request) {
	var req notifyQuarterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode request body: %w", err))
		return
	}

	sess, err := s.sessions.Get(req.SessionID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	issue := quarterIssue(sess.Validation)
	if issue == nil {
		writeError(w, r, http.StatusBadRequest, errors.New("session has no quarter date issues"))
		return
	}

	workbook, err := report.QuarterIssuesWorkbook(sess.Table, issue, sess.Validation.HeaderLabels)
	if err != nil {
		respondError(w, r, fmt.Errorf("build quarter issues workbook: %w", err))
		return
	}

	attachments := []report.Artifact{
		{
			Name:        report.BaseName(sess.FileName) + "_Quarter_Issues.xlsx",
			ContentType: report.ContentTypeXLSX,
			Data:        workbook,
		},
		{
			Name:        sess.FileName,
			ContentType: "application/octet-stream",
			Data:        sess.Original,
		},
	}
	msg := vatmail.QuarterIssuesMessage(s.cfg.Mail.AdminTo, sess.FileName, issue, attachments)
	if err := s.sender.Send(r.Context(), msg); err != nil {
		logging.ForUpload(r.Context(), sess.FileName, sess.ID).
			Error("quarter issues notification failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "quarter issues notification processed",
		"issue_count":  issue.Count,
		"session_id":   sess.ID,
		"file_name":    sess.FileName,
		"total_rows":   sess.Validation.TotalRows,
		"issue_detail": issue.Description,
	})
}

// manualReviewResponse renders the blocked-batch payload with the affected
// rows under their display labels.
func (s *Server) manualReviewResponse(r *http.Request, set *core.ManualReviewSet) ManualReviewResponse {
	labels, err := s.service.FieldLabels(r.Context())
	if err != nil {
		labels = schema.Labels(schema.DefaultFields)
	}

	renamed := set.Table.Renamed(labels)
	rows := make([]map[string]string, 0, len(set.Indexes))
	for _, idx := range set.Indexes {
		row := make(map[string]string, len(renamed.Columns)+1)
		row["row"] = strconv.Itoa(core.DisplayRow(idx))
		for j, col := range renamed.Columns {
			row[col] = renamed.Cell(idx, j)
		}
		rows = append(rows, row)
	}

	return ManualReviewResponse{
		ManualReviewRequired: true,
		Count:                set.Count(),
		Rows:                 rows,
		Message:              fmt.Sprintf("%d rows matched no VAT rule and need manual review", set.Count()),
	}
}

// serveArtifact streams a generated file as an attachment.
func serveArtifact(w http.ResponseWriter, a report.Artifact) {
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

// quarterIssue extracts the quarter policy issue from a validation result.
func quarterIssue(result *core.ValidationResult) *core.Issue {
	for i := range result.DataIssues {
		if result.DataIssues[i].Kind == core.IssueInvalidQuarter {
			return &result.DataIssues[i]
		}
	}
	return nil
}
