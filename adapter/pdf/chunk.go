package pdf

import "strings"

// chunkSentences glues sentences together into chunks of at most maxSize
// characters. Consecutive chunks share trailing sentences adding up to at
// most overlap characters so that context is not lost at chunk boundaries.
// A single sentence longer than maxSize becomes a chunk of its own.
func chunkSentences(sentenceTexts []string, maxSize, overlap int) []string {
	var (
		chunks  []string
		current []string
		size    int
		fresh   int
	)

	flush := func() {
		// Only carried overlap here, already emitted with the previous chunk.
		if fresh == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Seed the next chunk with trailing sentences up to the overlap size.
		var (
			carry     []string
			carrySize int
		)
		for i := len(current) - 1; i >= 0; i-- {
			if carrySize+len(current[i]) > overlap {
				break
			}
			carry = append([]string{current[i]}, carry...)
			carrySize += len(current[i]) + 1
		}
		current = carry
		size = carrySize
		fresh = 0
	}

	for _, aSentence := range sentenceTexts {
		if size+len(aSentence) > maxSize {
			flush()
			if size+len(aSentence) > maxSize {
				// The sentence does not fit even next to the carried overlap,
				// drop the carry so already emitted text is not repeated.
				current = nil
				size = 0
			}
		}
		current = append(current, aSentence)
		size += len(aSentence) + 1
		fresh++
	}

	if fresh > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
