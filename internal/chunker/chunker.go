// Package chunker splits document text into overlapping, size-bounded
// chunks for indexing. Splitting is hierarchical: paragraph breaks
// first, then lines, sentences, words, and finally raw character
// windows for text with no usable separators. Consecutive chunks share
// a configured amount of trailing context so information spanning a
// split point stays retrievable.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
)

var separators = []string{"\n\n", "\n", ". ", " "}

type Chunker struct {
	ChunkSize    int
	ChunkOverlap int
}

// New validates the configuration up front: an overlap that reaches the
// chunk size would never make progress.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, errdefs.Newf(errdefs.KindChunkConfig, "chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, errdefs.Newf(errdefs.KindChunkConfig, "chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, errdefs.Newf(errdefs.KindChunkConfig, "chunk overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}
	return &Chunker{ChunkSize: chunkSize, ChunkOverlap: overlap}, nil
}

// JoinPages concatenates page texts with a newline between pages. All
// chunk offsets refer to this joined text, so overlap carries across
// page boundaries.
func JoinPages(pages []models.Page) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n")
}

// Split chunks the document's pages. Offsets and sizes are measured in
// runes. The same input and configuration always produce the identical
// chunk sequence; chunk IDs are derived from the document ID and chunk
// index so re-ingesting a document yields the same identities.
func (c *Chunker) Split(documentID string, pages []models.Page) []models.Chunk {
	text := []rune(JoinPages(pages))
	if len(strings.TrimSpace(string(text))) == 0 {
		return nil
	}

	pageStarts := pageStartOffsets(pages)

	pieces := c.split(text, separators)
	spans := c.merge(pieces)

	chunks := make([]models.Chunk, 0, len(spans))
	for _, sp := range spans {
		// Page-joining newlines can end up as spans of their own.
		if strings.TrimSpace(string(sp.text)) == "" {
			continue
		}
		i := len(chunks)
		chunks = append(chunks, models.Chunk{
			ID:         chunkID(documentID, i),
			DocumentID: documentID,
			Page:       pageAt(pageStarts, pages, sp.start),
			Index:      i,
			Start:      sp.start,
			End:        sp.start + len(sp.text),
			Text:       string(sp.text),
		})
	}
	return chunks
}

// split breaks text into ordered, non-overlapping pieces whose
// concatenation equals the input, each at most ChunkSize runes.
// Separators stay attached to the preceding piece so offsets stay
// exact.
func (c *Chunker) split(text []rune, seps []string) [][]rune {
	if len(text) <= c.ChunkSize {
		if len(text) == 0 {
			return nil
		}
		return [][]rune{text}
	}

	if len(seps) == 0 {
		// No structure left: fixed-stride windows sized so the merge
		// step can still prepend the overlap without exceeding the
		// chunk size.
		stride := c.ChunkSize - c.ChunkOverlap
		var out [][]rune
		for i := 0; i < len(text); i += stride {
			end := i + stride
			if end > len(text) {
				end = len(text)
			}
			out = append(out, text[i:end])
		}
		return out
	}

	parts := splitAfter(text, []rune(seps[0]))
	if len(parts) == 1 {
		return c.split(text, seps[1:])
	}

	var out [][]rune
	for _, part := range parts {
		if len(part) <= c.ChunkSize {
			out = append(out, part)
		} else {
			out = append(out, c.split(part, seps[1:])...)
		}
	}
	return out
}

type span struct {
	start int
	text  []rune
}

// merge packs pieces into chunks of at most ChunkSize runes, seeding
// each new chunk with the tail of the previous one. The carried tail
// shrinks when the next piece would not fit alongside the full
// overlap.
func (c *Chunker) merge(pieces [][]rune) []span {
	var spans []span

	var cur []rune
	curStart := 0
	pos := 0

	for _, p := range pieces {
		if len(cur) > 0 && len(cur)+len(p) > c.ChunkSize {
			spans = append(spans, span{start: curStart, text: cur})

			ov := c.ChunkOverlap
			if ov > len(cur) {
				ov = len(cur)
			}
			for ov > 0 && ov+len(p) > c.ChunkSize {
				ov--
			}
			tail := make([]rune, ov)
			copy(tail, cur[len(cur)-ov:])
			curStart = pos - ov
			cur = tail
		}
		cur = append(cur, p...)
		pos += len(p)
	}

	if len(cur) > 0 {
		spans = append(spans, span{start: curStart, text: cur})
	}
	return spans
}

func chunkID(documentID string, index int) string {
	name := fmt.Sprintf("%s:%d", documentID, index)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func splitAfter(text []rune, sep []rune) [][]rune {
	var parts [][]rune
	start := 0
	for i := 0; i+len(sep) <= len(text); i++ {
		if string(text[i:i+len(sep)]) == string(sep) {
			parts = append(parts, text[start:i+len(sep)])
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

func pageStartOffsets(pages []models.Page) []int {
	starts := make([]int, len(pages))
	offset := 0
	for i, p := range pages {
		starts[i] = offset
		offset += len([]rune(p.Text)) + 1 // +1 for the joining newline
	}
	return starts
}

// pageAt returns the number of the page containing the given rune
// offset of the joined text.
func pageAt(starts []int, pages []models.Page, offset int) int {
	page := 1
	for i, s := range starts {
		if offset >= s {
			page = pages[i].Number
		}
	}
	return page
}
