package postgres

import (
	"context"
	"time"

	"docqa-api/internal/domain/entity"
	"docqa-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

type chunkRepository struct {
	db *sqlx.DB
}

func NewChunkRepository(db *sqlx.DB) repository.ChunkRepository {
	return &chunkRepository{db: db}
}

// InsertChunks persists a batch of chunks with their embeddings
func (r *chunkRepository) InsertChunks(ctx context.Context, chunks []entity.DocumentChunk) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO document_chunks (id, content, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for i := range chunks {
		chunks[i].ID = uuid.New().String()
		chunks[i].CreatedAt = time.Now()

		_, err := tx.ExecContext(ctx, query,
			chunks[i].ID,
			chunks[i].Content,
			chunks[i].Embedding,
			chunks[i].Metadata,
			chunks[i].CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SearchSimilar returns chunks whose cosine similarity to the query
// embedding meets the threshold, best match first. The result may be empty.
func (r *chunkRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, topK int, threshold float64) ([]entity.RetrievedChunk, error) {
	query := `
		SELECT
			content,
			metadata,
			1 - (embedding <=> $1) AS similarity
		FROM document_chunks
		WHERE (1 - (embedding <=> $1)) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, embedding, threshold, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []entity.RetrievedChunk
	for rows.Next() {
		var chunk entity.RetrievedChunk
		if err := rows.Scan(&chunk.Content, &chunk.Metadata, &chunk.Similarity); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// FileHashExists reports whether any stored chunk carries the given file
// fingerprint. Used as the upload dedup probe.
func (r *chunkRepository) FileHashExists(ctx context.Context, fileHash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM document_chunks WHERE metadata->>'file_hash' = $1)`
	if err := r.db.GetContext(ctx, &exists, query, fileHash); err != nil {
		return false, err
	}
	return exists, nil
}

// ListSources aggregates chunk metadata into one row per ingested file.
func (r *chunkRepository) ListSources(ctx context.Context) ([]entity.SourceInfo, error) {
	query := `
		SELECT
			metadata->>'source' AS source,
			metadata->>'file_hash' AS file_hash,
			COUNT(*) AS total_chunks,
			MAX(metadata->>'upload_date') AS upload_date
		FROM document_chunks
		GROUP BY metadata->>'source', metadata->>'file_hash'
		ORDER BY upload_date DESC
	`

	var sources []entity.SourceInfo
	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, err
	}
	return sources, nil
}
