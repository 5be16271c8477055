package models

// Document is a parsed upload: an ordered sequence of pages.
// Immutable once created; after indexing it lives on only as chunks.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// Page is the raw extracted text of one page.
type Page struct {
	DocumentID string `json:"document_id"`
	Number     int    `json:"number"`
	Text       string `json:"text"`
}

// Chunk is a bounded, possibly-overlapping span of a document's text,
// the unit stored and retrieved. Start and End are rune offsets into
// the document's joined page text.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
	Index      int    `json:"index"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"text"`
}

// SearchResult is a matching chunk with a relevance score in [0, 1].
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Answer is the generated response plus the retrieval that grounded it.
type Answer struct {
	Text    string         `json:"text"`
	Sources []SearchResult `json:"sources,omitempty"`
}

// IngestResult reports what a single ingestion committed.
type IngestResult struct {
	DocumentID    string `json:"document_id"`
	PagesParsed   int    `json:"pages"`
	ChunksIndexed int    `json:"chunks"`
}

// QueryRequest is the body of the query endpoint.
type QueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type QueryData struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources,omitempty"`
	Cached  bool           `json:"cached,omitempty"`
}
