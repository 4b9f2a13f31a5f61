package handler

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler streams the spreadsheet of every faculty, group and student.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register mounts the export route.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/excel", h.excel)
}

func (h *ExportHandler) excel(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), &buf); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build export")
		return fmt.Errorf("export workbook: %w", err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment(service.ExportFileName)
	return c.Send(buf.Bytes())
}
