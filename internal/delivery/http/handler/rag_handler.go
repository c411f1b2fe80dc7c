package handler

import (
	"context"
	"io"
	"strings"

	"docqa-api/internal/delivery/http/dto"
	"docqa-api/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
)

// RAGService is the pipeline surface the handlers need; satisfied by
// *rag.RAGUsecase and stubbed in tests.
type RAGService interface {
	IngestPDF(ctx context.Context, filename string, file io.Reader) (*entity.IngestResult, error)
	Chat(ctx context.Context, query string) (string, error)
	ListSources(ctx context.Context) ([]entity.SourceInfo, error)
}

type RAGHandler struct {
	service RAGService
}

func NewRAGHandler(service RAGService) *RAGHandler {
	return &RAGHandler{service: service}
}

// Upload ingests one PDF uploaded as multipart form field "file". Non-PDF
// filenames are rejected before anything touches disk.
func (h *RAGHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Failed to get file"})
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Only PDF files are supported"})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to open file"})
	}
	defer src.Close()

	result, err := h.service.IngestPDF(c.Context(), file.Filename, src)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// Chat answers a question against the indexed documents.
func (h *RAGHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Query is required"})
	}

	answer, err := h.service.Chat(c.Context(), req.Query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.ChatResponse{Answer: answer})
}

// ListSources lists the ingested files with their chunk counts.
func (h *RAGHandler) ListSources(c *fiber.Ctx) error {
	sources, err := h.service.ListSources(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	infos := make([]dto.SourceInfo, 0, len(sources))
	for _, s := range sources {
		infos = append(infos, dto.SourceInfo{
			Source:      s.Source,
			FileHash:    s.FileHash,
			TotalChunks: s.TotalChunks,
			UploadDate:  s.UploadDate,
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.ListSourcesResponse{Data: infos})
}
