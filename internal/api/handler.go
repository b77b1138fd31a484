package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cardwise/statement-ingest/internal/common"
	"github.com/cardwise/statement-ingest/internal/models"
	"github.com/cardwise/statement-ingest/internal/pipeline"
)

// ConvertResponse is the JSON body of POST /api/convert and of GET
// /api/results/:id. Transactions is never null, even on errors.
type ConvertResponse struct {
	Success         bool                           `json:"success"`
	Error           string                         `json:"error,omitempty"`
	Warning         string                         `json:"warning,omitempty"`
	UploadID        string                         `json:"uploadId,omitempty"`
	Transactions    []models.Transaction           `json:"transactions"`
	Summary         *models.Summary                `json:"summary,omitempty"`
	Subscriptions   []models.SubscriptionCandidate `json:"subscriptions,omitempty"`
	MonthlyInterest float64                        `json:"monthlyInterest,omitempty"`
	Stats           *models.Stats                  `json:"stats,omitempty"`
	Count           int                            `json:"count"`
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// HandleConvert accepts a multipart statement upload (form field "file",
// optional "apr") and returns the ingestion result. Zero transactions is
// a 200 with a warning; unsupported types are 400 and unreadable files
// 422.
func (s *Server) HandleConvert(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	f, err := header.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Could not read the uploaded file.")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Could not read the uploaded file.")
	}

	var apr float64
	if raw := c.FormValue("apr"); raw != "" {
		apr, err = strconv.ParseFloat(raw, 64)
		if err != nil || apr < 0 {
			return writeError(c, fiber.StatusBadRequest, "apr must be a non-negative number.")
		}
	}

	opts := pipeline.Options{APR: apr, EnableOCR: s.enableOCR}
	result, err := ingestByName(header.Filename, data, opts)

	var warning string
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoTransactions):
			warning = "No transactions found in this statement."
		case errors.Is(err, common.ErrUnsupportedFileType):
			return writeError(c, fiber.StatusBadRequest, common.UserMessage(err))
		case errors.Is(err, common.ErrParseFailure):
			return writeError(c, fiber.StatusUnprocessableEntity, common.UserMessage(err))
		default:
			slog.Error("conversion failed", "filename", header.Filename, "error", err)
			return writeError(c, fiber.StatusInternalServerError, "Conversion failed.")
		}
	}

	resp := successResponse(result, warning)
	resp.UploadID = uuid.NewString()
	s.cacheResult(resp)

	slog.Info("statement converted",
		"filename", header.Filename,
		"uploadId", resp.UploadID,
		"transactions", resp.Count,
		"skipped", result.Stats.SkippedRows)
	return c.JSON(resp)
}

// HandleResult returns a previously converted result by upload id.
func (s *Server) HandleResult(c *fiber.Ctx) error {
	if s.store == nil {
		return writeError(c, fiber.StatusServiceUnavailable, "Result cache is not configured.")
	}

	value, found, err := s.store.Get(c.Params("id"))
	if err != nil {
		slog.Error("result lookup failed", "uploadId", c.Params("id"), "error", err)
		return writeError(c, fiber.StatusInternalServerError, "Failed to read cached result.")
	}
	if !found {
		return writeError(c, fiber.StatusNotFound, "No result for this upload id.")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(value)
}

// cacheResult stores the response body under its upload id. Cache
// failures are logged, never surfaced: the caller already has the
// result.
func (s *Server) cacheResult(resp *ConvertResponse) {
	if s.store == nil {
		return
	}
	body, err := json.Marshal(resp)
	if err != nil {
		slog.Warn("could not serialize result for cache", "uploadId", resp.UploadID, "error", err)
		return
	}
	if err := s.store.Set(resp.UploadID, body); err != nil {
		slog.Warn("could not cache result", "uploadId", resp.UploadID, "error", err)
	}
}

// ingestByName routes OFX downloads to the OFX path and everything else
// to extension dispatch.
func ingestByName(filename string, data []byte, opts pipeline.Options) (*models.Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ofx", ".qfx":
		return pipeline.IngestOFX(data, opts)
	default:
		return pipeline.Ingest(filename, data, opts)
	}
}

func successResponse(result *models.Result, warning string) *ConvertResponse {
	resp := &ConvertResponse{
		Success:         true,
		Warning:         warning,
		Transactions:    result.Transactions,
		Summary:         &result.Summary,
		Subscriptions:   result.Subscriptions,
		MonthlyInterest: result.MonthlyInterest,
		Stats:           &result.Stats,
		Count:           len(result.Transactions),
	}
	if resp.Transactions == nil {
		resp.Transactions = []models.Transaction{}
	}
	return resp
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(&ConvertResponse{
		Success:      false,
		Error:        msg,
		Transactions: []models.Transaction{},
	})
}
