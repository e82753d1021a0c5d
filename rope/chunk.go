package rope

// Chunk size bounds control the granularity of leaf storage.
const (
	minChunkSize    = 64
	maxChunkSize    = 128
	targetChunkSize = (minChunkSize + maxChunkSize) / 2
)

// chunk is a bounded immutable string with precomputed metrics.
type chunk struct {
	text string
	sum  summary
}

func newChunk(s string) chunk {
	return chunk{text: s, sum: computeSummary(s)}
}

func (c chunk) len() int { return len(c.text) }

// split divides the chunk at a byte offset, which must lie on a UTF-8
// boundary.
func (c chunk) split(offset int) (chunk, chunk) {
	if offset <= 0 {
		return chunk{}, c
	}
	if offset >= len(c.text) {
		return c, chunk{}
	}
	return newChunk(c.text[:offset]), newChunk(c.text[offset:])
}

// splitIntoChunks slices s into chunks of roughly targetChunkSize bytes,
// always splitting on UTF-8 boundaries.
func splitIntoChunks(s string) []chunk {
	if len(s) == 0 {
		return nil
	}
	var chunks []chunk
	for len(s) > maxChunkSize {
		cut := utf8Boundary(s, targetChunkSize)
		chunks = append(chunks, newChunk(s[:cut]))
		s = s[cut:]
	}
	chunks = append(chunks, newChunk(s))
	return chunks
}

// utf8Boundary returns a byte offset at or after target that does not fall
// inside a multi-byte rune.
func utf8Boundary(s string, target int) int {
	if target >= len(s) {
		return len(s)
	}
	for target < len(s) && s[target]&0xC0 == 0x80 {
		target++
	}
	return target
}
