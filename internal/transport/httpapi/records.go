package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/keepson/keepson/internal/domain"
	"github.com/keepson/keepson/internal/domain/record/patch"
	recorduc "github.com/keepson/keepson/internal/usecase/record"
)

// multipartMemory is the in-memory threshold for parsed form parts;
// larger uploads spill to temp files.
const multipartMemory = 4 << 20

// handleCreateRecord handles POST /api/v1/records. File-backed records
// arrive as multipart/form-data, the rest as JSON.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	var in recorduc.CreateInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parsed, cleanup, err := s.multipartInput(w, r)
		if err != nil {
			s.badUpload(w, err)
			return
		}
		defer cleanup()
		in = parsed
	} else {
		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		in = recorduc.CreateInput{
			Type:    req.Type,
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		}
	}

	rec, err := s.records.Create(r.Context(), owner, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/records/"+rec.ID())
	writeJSON(w, http.StatusCreated, recordToDTO(&rec))
}

// multipartInput reads a multipart capture. The body is capped at the
// upload limit plus slack for the metadata fields.
func (s *Server) multipartInput(
	w http.ResponseWriter, r *http.Request,
) (recorduc.CreateInput, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return recorduc.CreateInput{}, func() {}, err
	}

	in := recorduc.CreateInput{
		Type:    r.FormValue("type"),
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Tags:    r.MultipartForm.Value["tags"],
	}

	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		in.File = file
		in.Filename = header.Filename
		cleanup = func() {
			_ = file.Close()
			_ = r.MultipartForm.RemoveAll()
		}
	case errors.Is(err, http.ErrMissingFile):
		// metadata-only part set; the use case rejects it if the type needs a file
	default:
		return recorduc.CreateInput{}, cleanup, err
	}

	return in, cleanup, nil
}

// badUpload maps multipart parse failures: an overrun body becomes the
// file size error, everything else is a bad request.
func (s *Server) badUpload(w http.ResponseWriter, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		s.handleDomainError(w, domain.NewFileTooLarge(s.maxUploadBytes))
		return
	}
	writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart body: "+err.Error())
}

// handleListRecords handles GET /api/v1/records.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "page must be an integer")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
		return
	}

	records, pageInfo, err := s.records.List(r.Context(), owner, page, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordListResponse{
		Items:      recordsToDTO(records),
		Pagination: pageToDTO(pageInfo),
	})
}

// handleGetRecord handles GET /api/v1/records/{recordID}.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	rec, err := s.records.Get(r.Context(), owner, chi.URLParam(r, "recordID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToDTO(&rec))
}

// handleUpdateRecord handles PATCH /api/v1/records/{recordID}.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	p, err := patch.New(req.Title, req.Content, req.Tags)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	rec, err := s.records.Update(r.Context(), owner, chi.URLParam(r, "recordID"), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToDTO(&rec))
}

// handleDeleteRecord handles DELETE /api/v1/records/{recordID}.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	if err := s.records.Delete(r.Context(), owner, chi.URLParam(r, "recordID")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDownloadFile handles GET /api/v1/records/{recordID}/file.
// ServeContent gets a seekable handle, so range requests work.
func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	rc, name, err := s.records.OpenFile(r.Context(), owner, chi.URLParam(r, "recordID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, time.Time{}, rc)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
