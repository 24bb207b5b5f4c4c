package model

type DocumentType string

const (
	DocumentTypeAct        DocumentType = "ACT"
	DocumentTypeRegulation DocumentType = "REGULATION"
	DocumentTypeCase       DocumentType = "CASE"
	DocumentTypeOther      DocumentType = "OTHER"
)

type Source struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Ctime int64  `json:"ctime"`
}

type Document struct {
	ID              string       `json:"id"`
	SourceID        string       `json:"source_id"`
	Title           string       `json:"title"`
	Type            DocumentType `json:"type"`
	Citation        string       `json:"citation"`
	Jurisdiction    string       `json:"jurisdiction"`
	DateEnacted     int64        `json:"date_enacted"`
	DateCommenced   int64        `json:"date_commenced"`
	DateLastAmended int64        `json:"date_last_amended"`
	PublishedAt     int64        `json:"published_at"`
	ContentHash     string       `json:"content_hash"`
	Ctime           int64        `json:"ctime"`
	Mtime           int64        `json:"mtime"`
}

type Section struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
	Heading    string `json:"heading"`
	Text       string `json:"text"`
	Ctime      int64  `json:"ctime"`
}

type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	SectionID  string `json:"section_id"`
	Index      int    `json:"index"`
	Text       string `json:"text"`
	Ctime      int64  `json:"ctime"`
}

type Embedding struct {
	ID      string    `json:"id"`
	ChunkID string    `json:"chunk_id"`
	Vector  []float32 `json:"vector"`
	Mtime   int64     `json:"mtime"`
}

type EmbeddingCache struct {
	ModelName   string
	ContentHash string
	Embedding   []float32
	Ctime       int64
}
