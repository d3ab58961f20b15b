package webrag

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// splitText chunks text with a fixed-size sliding window measured in runes.
// Every chunk is at most size runes and adjacent chunks share exactly overlap
// runes, except the final chunk which may be shorter.
func splitText(text string, size, overlap int) []string {
	if size <= 0 || overlap < 0 || overlap >= size {
		return []string{text}
	}
	runes := []rune(text)
	if len(runes) <= size {
		if len(runes) == 0 {
			return nil
		}
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
