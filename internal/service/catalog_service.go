package service

import (
	"context"
	"database/sql"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/repo"
)

// CatalogService serves read-only views of the ingested corpus.
type CatalogService struct {
	documents  *repo.DocumentRepo
	sections   *repo.SectionRepo
	chunks     *repo.ChunkRepo
	embeddings *repo.EmbeddingRepo
	jobs       *repo.IngestionJobRepo
}

func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{
		documents:  repo.NewDocumentRepo(db),
		sections:   repo.NewSectionRepo(db),
		chunks:     repo.NewChunkRepo(db),
		embeddings: repo.NewEmbeddingRepo(db),
		jobs:       repo.NewIngestionJobRepo(db),
	}
}

type DocumentPage struct {
	Items []model.Document `json:"items"`
	Total int              `json:"total"`
}

func (s *CatalogService) ListDocuments(ctx context.Context, limit, offset uint) (*DocumentPage, error) {
	items, err := s.documents.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.documents.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &DocumentPage{Items: items, Total: total}, nil
}

type DocumentDetail struct {
	Document   *model.Document `json:"document"`
	Sections   []model.Section `json:"sections"`
	ChunkCount int             `json:"chunk_count"`
}

func (s *CatalogService) GetDocument(ctx context.Context, docID string) (*DocumentDetail, error) {
	doc, err := s.documents.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	sections, err := s.sections.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	chunks, err := s.chunks.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{
		Document:   doc,
		Sections:   sections,
		ChunkCount: len(chunks),
	}, nil
}

type CorpusStats struct {
	Documents  int `json:"documents"`
	Chunks     int `json:"chunks"`
	Embeddings int `json:"embeddings"`
	Pending    int `json:"pending"`
}

func (s *CatalogService) Stats(ctx context.Context) (*CorpusStats, error) {
	documents, err := s.documents.Count(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := s.chunks.Count(ctx)
	if err != nil {
		return nil, err
	}
	embeddings, err := s.embeddings.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending := chunks - embeddings
	if pending < 0 {
		pending = 0
	}
	return &CorpusStats{
		Documents:  documents,
		Chunks:     chunks,
		Embeddings: embeddings,
		Pending:    pending,
	}, nil
}

func (s *CatalogService) ListJobs(ctx context.Context, limit, offset uint) ([]model.IngestionJob, error) {
	return s.jobs.List(ctx, limit, offset)
}

func (s *CatalogService) GetJob(ctx context.Context, jobID string) (*model.IngestionJob, error) {
	return s.jobs.Get(ctx, jobID)
}
