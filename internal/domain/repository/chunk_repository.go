package repository

import (
	"context"

	"docqa-api/internal/domain/entity"

	"github.com/pgvector/pgvector-go"
)

type ChunkRepository interface {
	InsertChunks(ctx context.Context, chunks []entity.DocumentChunk) error
	SearchSimilar(ctx context.Context, embedding pgvector.Vector, topK int, threshold float64) ([]entity.RetrievedChunk, error)
	FileHashExists(ctx context.Context, fileHash string) (bool, error)
	ListSources(ctx context.Context) ([]entity.SourceInfo, error)
}
