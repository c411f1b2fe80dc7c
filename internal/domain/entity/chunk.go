package entity

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ChunkMetadata is the provenance record stored next to every chunk. All
// chunks produced from one upload share the same FileHash.
type ChunkMetadata struct {
	Source        string `json:"source"`
	FileHash      string `json:"file_hash"`
	Page          int    `json:"page"`
	ChunkIndex    int    `json:"chunk_index"`
	TotalChunks   int    `json:"total_chunks"`
	UploadDate    string `json:"upload_date"`
	ContentLength int    `json:"content_length"`
}

type DocumentChunk struct {
	ID        string          `db:"id" json:"id"`
	Content   string          `db:"content" json:"content"`
	Embedding pgvector.Vector `db:"embedding" json:"-"`
	Metadata  []byte          `db:"metadata" json:"metadata"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// RetrievedChunk is a similarity search hit. Not persisted.
type RetrievedChunk struct {
	Content    string  `db:"content" json:"content"`
	Metadata   []byte  `db:"metadata" json:"metadata"`
	Similarity float64 `db:"similarity" json:"similarity"`
}

const (
	IngestStatusSuccess = "success"
	IngestStatusSkipped = "skipped"
)

// IngestResult is the terminal outcome of one upload.
type IngestResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ChunksAdded int    `json:"chunks_added"`
	FileHash    string `json:"file_hash,omitempty"`
}

// SourceInfo summarizes one ingested file, aggregated from chunk metadata.
type SourceInfo struct {
	Source      string `db:"source" json:"source"`
	FileHash    string `db:"file_hash" json:"fileHash"`
	TotalChunks int    `db:"total_chunks" json:"totalChunks"`
	UploadDate  string `db:"upload_date" json:"uploadDate"`
}
