package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/pitfolio/backend/src/config"
	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/parsers/ibkr"
	"github.com/username/pitfolio/backend/src/security/validation"
	"github.com/username/pitfolio/backend/src/services"
	"github.com/username/pitfolio/backend/src/utils"
)

type StatementHandler struct {
	statementService services.StatementService
}

func NewStatementHandler(service services.StatementService) *StatementHandler {
	return &StatementHandler{
		statementService: service,
	}
}

// HandleUpload accepts one or more HTML statements in the multipart field
// "files", runs the ingestion pipeline and returns the full report.
func (h *StatementHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		utils.SendJSONError(w, "No statement files provided. Use the 'files' field.", http.StatusBadRequest)
		return
	}

	var uploads []services.UploadedFile
	for _, fileHeader := range fileHeaders {
		if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
			utils.SendJSONError(w, fmt.Sprintf("File '%s' too large, max %d MB", fileHeader.Filename, config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
			return
		}
		if err := validation.ValidateStatementFilename(fileHeader.Filename); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validation.ValidateClientContentType(fileHeader.Header.Get("Content-Type")); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			logger.L.Warn("Failed to open uploaded file", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Failed to read file '%s'", fileHeader.Filename), http.StatusBadRequest)
			return
		}
		defer file.Close()

		detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
		if err != nil {
			logger.L.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Debug("File content validated", "filename", fileHeader.Filename, "detectedType", detectedContentType)

		uploads = append(uploads, services.UploadedFile{
			Filename: fileHeader.Filename,
			Reader:   file,
		})
	}

	logger.L.Info("Processing statement upload", "fileCount", len(uploads))
	report, err := h.statementService.ProcessUpload(r.Context(), uploads)
	if err != nil {
		switch {
		case errors.Is(err, ibkr.ErrSectionNotFound), errors.Is(err, ibkr.ErrTableNotFound):
			logger.L.Warn("Statement missing required section", "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing data: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			logger.L.Warn("Statement parsing failed", "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing data: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrCurrencyFetchFailed):
			logger.L.Error("Currency data fetch failed", "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error fetching currency data: %v", err), http.StatusBadGateway)
		default:
			logger.L.Error("Internal error processing upload", "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the statements. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	if etag, etagErr := utils.GenerateETag(report); etagErr == nil && etag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", etag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.L.Error("Error encoding JSON response for upload report", "error", err)
	}
}

// HandleHealth is a liveness probe.
func (h *StatementHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
