package rag

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators is the boundary cascade tried coarsest-first: paragraph
// breaks, line breaks, sentence ends, word breaks, then a hard character cut.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

type Chunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// ChunkText splits text into ordered chunks of at most chunkSize characters,
// preferring the coarsest boundary that keeps pieces under the size target.
// Consecutive chunks share up to chunkOverlap trailing characters of context.
func (c *Chunker) ChunkText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return c.split(text, c.separators)
}

func (c *Chunker) split(text string, separators []string) []string {
	sep, rest := pickSeparator(text, separators)

	if sep == "" {
		return c.hardCut(text)
	}

	parts := strings.SplitAfter(text, sep)

	var chunks []string
	var window []string
	total := 0

	emit := func() {
		if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, part := range parts {
		if len(part) > c.chunkSize {
			// the part alone exceeds the target; emit what we have and
			// recurse into it with finer separators
			emit()
			window, total = nil, 0
			chunks = append(chunks, c.split(part, rest)...)
			continue
		}
		if total+len(part) > c.chunkSize && total > 0 {
			emit()
			// shed leading parts until only overlap context remains and the
			// incoming part fits
			for len(window) > 0 && (total > c.chunkOverlap || total+len(part) > c.chunkSize) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, part)
		total += len(part)
	}

	if len(window) > 0 {
		if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
			// drop a final chunk that is purely overlap of the previous one
			if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], chunk) {
				chunks = append(chunks, chunk)
			}
		}
	}

	return chunks
}

// hardCut slices text into fixed windows with overlap; last resort when no
// natural boundary fits. Cut points never land inside a multibyte rune.
func (c *Chunker) hardCut(text string) []string {
	var chunks []string
	step := c.chunkSize - c.chunkOverlap

	for start := 0; start < len(text); {
		end := start + c.chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
		}
		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}

		next := start + step
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}

	return chunks
}

// pickSeparator returns the first separator present in the text and the
// finer separators after it.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}
