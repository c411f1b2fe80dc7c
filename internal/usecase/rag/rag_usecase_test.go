package rag

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"docqa-api/internal/domain/entity"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	exists       bool
	existsErr    error
	inserted     []entity.DocumentChunk
	insertErr    error
	searchResult []entity.RetrievedChunk
	searchErr    error
	searchCalls  int
	sources      []entity.SourceInfo
}

func (r *fakeRepo) InsertChunks(_ context.Context, chunks []entity.DocumentChunk) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, chunks...)
	return nil
}

func (r *fakeRepo) SearchSimilar(_ context.Context, _ pgvector.Vector, _ int, _ float64) ([]entity.RetrievedChunk, error) {
	r.searchCalls++
	return r.searchResult, r.searchErr
}

func (r *fakeRepo) FileHashExists(_ context.Context, _ string) (bool, error) {
	return r.exists, r.existsErr
}

func (r *fakeRepo) ListSources(_ context.Context) ([]entity.SourceInfo, error) {
	return r.sources, nil
}

type fakeEmbedder struct {
	docCalls   [][]string
	queryCalls []string
	embedErr   error
}

func (e *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([]pgvector.Vector, error) {
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	e.docCalls = append(e.docCalls, texts)
	vectors := make([]pgvector.Vector, len(texts))
	for i := range vectors {
		vectors[i] = pgvector.NewVector([]float32{float32(i), 1})
	}
	return vectors, nil
}

func (e *fakeEmbedder) EmbedQuery(_ context.Context, text string) (pgvector.Vector, error) {
	if e.embedErr != nil {
		return pgvector.Vector{}, e.embedErr
	}
	e.queryCalls = append(e.queryCalls, text)
	return pgvector.NewVector([]float32{1, 0}), nil
}

type fakeChat struct {
	calls    int
	question string
	context  string
	answer   string
	err      error
}

func (c *fakeChat) GenerateAnswer(_ context.Context, question, contextBlock string) (string, error) {
	c.calls++
	c.question = question
	c.context = contextBlock
	return c.answer, c.err
}

type fakeExtractor struct {
	pages []PageText
	err   error
	calls int
	path  string
}

func (e *fakeExtractor) ExtractPages(path string) ([]PageText, error) {
	e.calls++
	e.path = path
	return e.pages, e.err
}

func newTestUsecase(repo *fakeRepo, embedder *fakeEmbedder, chat *fakeChat, extractor *fakeExtractor) *RAGUsecase {
	return NewRAGUsecase(repo, embedder, chat, extractor, 1000, 200, 4, 0.5)
}

func TestIngestPDFSuccess(t *testing.T) {
	repo := &fakeRepo{}
	embedder := &fakeEmbedder{}
	extractor := &fakeExtractor{pages: []PageText{
		{Page: 1, Text: "Testing is the process of evaluating software quality."},
		{Page: 2, Text: "Page 2\n\n"},
		{Page: 3, Text: "Static analysis finds defects without executing code."},
	}}
	uc := newTestUsecase(repo, embedder, &fakeChat{}, extractor)

	upload := []byte("%PDF-1.4 fake body")
	result, err := uc.IngestPDF(context.Background(), "istqb.pdf", bytes.NewReader(upload))
	require.NoError(t, err)

	sum := md5.Sum(upload)
	wantHash := hex.EncodeToString(sum[:])

	assert.Equal(t, entity.IngestStatusSuccess, result.Status)
	assert.Equal(t, wantHash, result.FileHash)
	assert.Equal(t, 2, result.ChunksAdded)
	require.Len(t, repo.inserted, 2)

	// one batched embedding call covering every chunk, in order
	require.Len(t, embedder.docCalls, 1)
	assert.Equal(t, []string{
		"Testing is the process of evaluating software quality.",
		"Static analysis finds defects without executing code.",
	}, embedder.docCalls[0])

	for i, chunk := range repo.inserted {
		var meta entity.ChunkMetadata
		require.NoError(t, json.Unmarshal(chunk.Metadata, &meta))

		assert.Equal(t, "istqb.pdf", meta.Source)
		assert.Equal(t, wantHash, meta.FileHash)
		assert.Equal(t, i, meta.ChunkIndex)
		assert.Equal(t, 2, meta.TotalChunks)
		assert.Equal(t, len(chunk.Content), meta.ContentLength)

		_, err := time.Parse(time.RFC3339, meta.UploadDate)
		assert.NoError(t, err, "upload date must be RFC3339")
	}

	// the blank page 2 was dropped
	var pages []int
	for _, chunk := range repo.inserted {
		var meta entity.ChunkMetadata
		require.NoError(t, json.Unmarshal(chunk.Metadata, &meta))
		pages = append(pages, meta.Page)
	}
	assert.Equal(t, []int{1, 3}, pages)
}

func TestIngestPDFSkipsDuplicate(t *testing.T) {
	repo := &fakeRepo{exists: true}
	extractor := &fakeExtractor{}
	uc := newTestUsecase(repo, &fakeEmbedder{}, &fakeChat{}, extractor)

	result, err := uc.IngestPDF(context.Background(), "istqb.pdf", strings.NewReader("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, entity.IngestStatusSkipped, result.Status)
	assert.Zero(t, result.ChunksAdded)
	assert.Zero(t, extractor.calls, "duplicate uploads must not be reprocessed")
	assert.Empty(t, repo.inserted)
}

func TestIngestPDFDuplicateCheckFailsOpen(t *testing.T) {
	repo := &fakeRepo{existsErr: errors.New("store unreachable")}
	extractor := &fakeExtractor{pages: []PageText{{Page: 1, Text: "some content"}}}
	uc := newTestUsecase(repo, &fakeEmbedder{}, &fakeChat{}, extractor)

	result, err := uc.IngestPDF(context.Background(), "istqb.pdf", strings.NewReader("bytes"))
	require.NoError(t, err)

	assert.Equal(t, entity.IngestStatusSuccess, result.Status)
	assert.Equal(t, 1, result.ChunksAdded)
}

func TestIngestPDFNoUsableText(t *testing.T) {
	repo := &fakeRepo{}
	extractor := &fakeExtractor{pages: []PageText{{Page: 1, Text: "Page 1\n\n"}}}
	uc := newTestUsecase(repo, &fakeEmbedder{}, &fakeChat{}, extractor)

	_, err := uc.IngestPDF(context.Background(), "scanned.pdf", strings.NewReader("bytes"))
	assert.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestIngestPDFCleansUpTempFile(t *testing.T) {
	tests := []struct {
		name      string
		repo      *fakeRepo
		extractor *fakeExtractor
		wantErr   bool
	}{
		{
			name:      "on success",
			repo:      &fakeRepo{},
			extractor: &fakeExtractor{pages: []PageText{{Page: 1, Text: "content"}}},
		},
		{
			name:      "on duplicate skip",
			repo:      &fakeRepo{exists: true},
			extractor: &fakeExtractor{},
		},
		{
			name:      "on extraction failure",
			repo:      &fakeRepo{},
			extractor: &fakeExtractor{err: errors.New("corrupt PDF")},
			wantErr:   true,
		},
		{
			name:      "on persist failure",
			repo:      &fakeRepo{insertErr: errors.New("insert failed")},
			extractor: &fakeExtractor{pages: []PageText{{Page: 1, Text: "content"}}},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUsecase(tt.repo, &fakeEmbedder{}, &fakeChat{}, tt.extractor)

			_, err := uc.IngestPDF(context.Background(), "doc.pdf", strings.NewReader("bytes"))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			if tt.extractor.path != "" {
				_, statErr := os.Stat(tt.extractor.path)
				assert.True(t, os.IsNotExist(statErr), "temp file %s must be removed", tt.extractor.path)
			}
		})
	}
}

func TestChatNoResultsReturnsFallback(t *testing.T) {
	repo := &fakeRepo{}
	chat := &fakeChat{answer: "should not be used"}
	uc := newTestUsecase(repo, &fakeEmbedder{}, chat, &fakeExtractor{})

	answer, err := uc.Chat(context.Background(), "What is boundary value analysis?")
	require.NoError(t, err)

	assert.Equal(t, NoAnswerMessage, answer)
	assert.Zero(t, chat.calls, "the model must not be called without grounding")
	assert.Equal(t, 1, repo.searchCalls)
}

func TestChatAssemblesContextInRetrievalOrder(t *testing.T) {
	repo := &fakeRepo{searchResult: []entity.RetrievedChunk{
		{Content: "first chunk", Similarity: 0.9},
		{Content: "second chunk", Similarity: 0.8},
		{Content: "third chunk", Similarity: 0.7},
	}}
	embedder := &fakeEmbedder{}
	chat := &fakeChat{answer: "grounded answer"}
	uc := newTestUsecase(repo, embedder, chat, &fakeExtractor{})

	answer, err := uc.Chat(context.Background(), "What is a test case?")
	require.NoError(t, err)

	assert.Equal(t, "grounded answer", answer)
	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, "What is a test case?", chat.question)
	assert.Equal(t, "first chunk\n\nsecond chunk\n\nthird chunk", chat.context)

	// the query is embedded exactly once
	assert.Equal(t, []string{"What is a test case?"}, embedder.queryCalls)
}

func TestChatSearchError(t *testing.T) {
	repo := &fakeRepo{searchErr: errors.New("store down")}
	chat := &fakeChat{}
	uc := newTestUsecase(repo, &fakeEmbedder{}, chat, &fakeExtractor{})

	_, err := uc.Chat(context.Background(), "anything")
	assert.Error(t, err)
	assert.Zero(t, chat.calls)
}

func TestListSources(t *testing.T) {
	repo := &fakeRepo{sources: []entity.SourceInfo{
		{Source: "istqb.pdf", FileHash: "abc", TotalChunks: 12},
	}}
	uc := newTestUsecase(repo, &fakeEmbedder{}, &fakeChat{}, &fakeExtractor{})

	sources, err := uc.ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "istqb.pdf", sources[0].Source)
}
