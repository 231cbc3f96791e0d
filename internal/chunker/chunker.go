// Package chunker splits note text into overlapping, retrieval-sized
// passages with deterministic identity.
package chunker

import "fmt"

// DefaultChunkSize is the target chunk length in runes.
const DefaultChunkSize = 512

// DefaultOverlap is the number of runes shared between consecutive chunks.
const DefaultOverlap = 50

// Chunk is a contiguous passage of a document's text. Start and End are
// rune offsets into the source text.
type Chunk struct {
	DocID string
	Seq   int
	Start int
	End   int
	Text  string
}

// ID returns the chunk identifier, deterministic from (document id,
// sequence index) so that re-chunking an edited document supersedes the
// old chunks slot for slot.
func (c Chunk) ID() string {
	return ChunkID(c.DocID, c.Seq)
}

// ChunkID builds a chunk identifier from its parts.
func ChunkID(docID string, seq int) string {
	return fmt.Sprintf("%s#%04d", docID, seq)
}

// Splitter produces chunks with a fixed size and overlap.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. Non-positive size falls back to the default;
// an overlap that is negative or would prevent forward progress is clamped
// to a quarter of the size.
func New(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split cuts text into ordered chunks. Identical input always produces
// identical output. A document shorter than one chunk yields exactly one
// chunk; empty text yields none. Trailing content is never dropped: the
// final chunk always ends at the end of the text.
func (s *Splitter) Split(docID, text string) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	if len(runes) <= s.size {
		return []Chunk{{
			DocID: docID,
			Seq:   0,
			Start: 0,
			End:   len(runes),
			Text:  text,
		}}
	}

	step := s.size - s.overlap
	chunks := make([]Chunk, 0, len(runes)/step+1)

	seq := 0
	for start := 0; start < len(runes); start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			DocID: docID,
			Seq:   seq,
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		seq++
		if end == len(runes) {
			break
		}
	}

	return chunks
}
