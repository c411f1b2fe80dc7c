package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"docqa-api/internal/domain/entity"
	"docqa-api/internal/domain/repository"

	"github.com/pgvector/pgvector-go"
)

// NoAnswerMessage is returned for questions with no retrieved grounding.
// The model is never called in that case.
const NoAnswerMessage = "Xin lỗi, tôi không tìm thấy thông tin liên quan trong tài liệu ISTQB để trả lời câu hỏi của bạn."

type EmbeddingService interface {
	EmbedDocuments(ctx context.Context, texts []string) ([]pgvector.Vector, error)
	EmbedQuery(ctx context.Context, text string) (pgvector.Vector, error)
}

type ChatService interface {
	GenerateAnswer(ctx context.Context, question, contextBlock string) (string, error)
}

type RAGUsecase struct {
	chunkRepo   repository.ChunkRepository
	embedder    EmbeddingService
	chatService ChatService
	extractor   PageExtractor
	chunker     *Chunker
	topK        int
	threshold   float64
}

func NewRAGUsecase(
	chunkRepo repository.ChunkRepository,
	embedder EmbeddingService,
	chatService ChatService,
	extractor PageExtractor,
	chunkSize, chunkOverlap int,
	topK int,
	threshold float64,
) *RAGUsecase {
	return &RAGUsecase{
		chunkRepo:   chunkRepo,
		embedder:    embedder,
		chatService: chatService,
		extractor:   extractor,
		chunker:     NewChunker(chunkSize, chunkOverlap),
		topK:        topK,
		threshold:   threshold,
	}
}

// IngestPDF runs the full ingestion pipeline for one uploaded PDF: buffer to
// a temp file, fingerprint, duplicate check, extract, normalize, chunk,
// embed and persist. The temp file is removed on every exit path.
func (uc *RAGUsecase) IngestPDF(ctx context.Context, filename string, file io.Reader) (*entity.IngestResult, error) {
	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	fileHash, err := FileMD5(tmpPath)
	if err != nil {
		return nil, err
	}

	// fail open: a store error here must not block ingestion, worst case we
	// re-index a file we already hold
	exists, err := uc.chunkRepo.FileHashExists(ctx, fileHash)
	if err != nil {
		log.Printf("duplicate check failed for %s: %v", filename, err)
		exists = false
	}
	if exists {
		return &entity.IngestResult{
			Status:      entity.IngestStatusSkipped,
			Message:     "File already exists in database",
			ChunksAdded: 0,
			FileHash:    fileHash,
		}, nil
	}

	pages, err := uc.extractor.ExtractPages(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	chunks := uc.buildChunks(filename, fileHash, pages)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text extracted from document")
	}
	log.Printf("generated %d chunks from %s", len(chunks), filename)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	embeddings, err := uc.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := uc.chunkRepo.InsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to save chunks: %w", err)
	}
	log.Printf("saved %d chunks for %s (hash %s)", len(chunks), filename, fileHash)

	return &entity.IngestResult{
		Status:      entity.IngestStatusSuccess,
		Message:     "File processed successfully",
		ChunksAdded: len(chunks),
		FileHash:    fileHash,
	}, nil
}

// buildChunks normalizes each page, drops empty ones, splits the rest and
// attaches provenance metadata. chunk_index runs 0-based across the whole
// document in page order.
func (uc *RAGUsecase) buildChunks(filename, fileHash string, pages []PageText) []entity.DocumentChunk {
	type pageChunk struct {
		page    int
		content string
	}

	var split []pageChunk
	for _, p := range pages {
		cleaned := NormalizeText(p.Text)
		if cleaned == "" {
			continue
		}
		for _, content := range uc.chunker.ChunkText(cleaned) {
			split = append(split, pageChunk{page: p.Page, content: content})
		}
	}

	uploadDate := time.Now().Format(time.RFC3339)

	chunks := make([]entity.DocumentChunk, 0, len(split))
	for i, pc := range split {
		metadata, _ := json.Marshal(entity.ChunkMetadata{
			Source:        filename,
			FileHash:      fileHash,
			Page:          pc.page,
			ChunkIndex:    i,
			TotalChunks:   len(split),
			UploadDate:    uploadDate,
			ContentLength: len(pc.content),
		})
		chunks = append(chunks, entity.DocumentChunk{
			Content:  pc.content,
			Metadata: metadata,
		})
	}

	return chunks
}

// Chat answers a question from the indexed documents: embed the query once,
// retrieve the nearest chunks, and generate an answer grounded on them.
func (uc *RAGUsecase) Chat(ctx context.Context, query string) (string, error) {
	queryEmbedding, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := uc.chunkRepo.SearchSimilar(ctx, queryEmbedding, uc.topK, uc.threshold)
	if err != nil {
		return "", fmt.Errorf("failed to search similar chunks: %w", err)
	}

	if len(chunks) == 0 {
		return NoAnswerMessage, nil
	}

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}
	contextBlock := strings.Join(contents, "\n\n")

	answer, err := uc.chatService.GenerateAnswer(ctx, query, contextBlock)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	return answer, nil
}

// ListSources reports which files are currently indexed.
func (uc *RAGUsecase) ListSources(ctx context.Context) ([]entity.SourceInfo, error) {
	return uc.chunkRepo.ListSources(ctx)
}
