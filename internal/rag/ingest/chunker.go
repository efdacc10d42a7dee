package ingest

import (
	"fmt"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
)

// snapWindow is the tail fraction of a window searched for a sentence break.
const snapWindow = 0.2

// Chunk splits normalised text into windows of at most targetSize runes. Consecutive windows
// share exactly overlap runes. A window ends just after the last '.' or newline found in its
// final 20%, otherwise at targetSize. Windows whose trimmed length does not exceed
// config.MinChunkLength are dropped.
func Chunk(text string, targetSize, overlap int) ([]string, error) {
	if targetSize <= 0 || overlap < 0 || overlap >= targetSize {
		return nil, fmt.Errorf("%w: chunk size %d and overlap %d need 0 <= overlap < size",
			commonModels.ErrValidation, targetSize, overlap)
	}

	runes := []rune(text)
	n := len(runes)
	snapFloor := targetSize - int(float64(targetSize)*snapWindow)

	var chunks []string
	for start := 0; start < n; {
		end := min(start+targetSize, n)
		if end < n {
			end = snapEnd(runes, start, end, start+snapFloor, overlap)
		}

		piece := string(runes[start:end])
		if len([]rune(strings.TrimSpace(piece))) > config.MinChunkLength {
			chunks = append(chunks, piece)
		}
		if end == n {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}

// snapEnd moves end back to just after the last break at or beyond floor. A snap that would
// stall the cursor is ignored.
func snapEnd(runes []rune, start, end, floor, overlap int) int {
	for i := end - 1; i >= floor; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			if i+1-overlap > start {
				return i + 1
			}
			return end
		}
	}
	return end
}

// NormalizeWhitespace collapses every whitespace run into a single space.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
