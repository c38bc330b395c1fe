package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

// Chunk is one slice of a document produced by Split.
type Chunk struct {
	Text         string
	SectionTitle string
	Index        int
}

// Split cuts normalized text into chunks along semantic boundaries:
// markdown headings, numbered section headings, ALL-CAPS headings, then
// paragraph breaks. A chunk never exceeds maxSize characters except when a
// single sentence cannot be cut; size-triggered cuts seed the next chunk
// with the trailing overlap characters of the previous one so similarity
// search keeps context across the cut.
//
// Split is a pure function of its inputs. Identical input always yields
// identical boundaries, which is what makes re-ingestion idempotent.
func Split(text string, maxSize, overlap int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = 2000
	}
	// The seed plus a separator must leave room for at least one character,
	// or a size-triggered cut could never make progress.
	if overlap < 0 || overlap > maxSize-3 {
		overlap = 0
	}

	s := &splitter{maxSize: maxSize, overlap: overlap}
	for _, b := range parseBlocks(text) {
		if b.heading {
			// A heading is a hard semantic boundary: no overlap carries
			// across it.
			s.flush()
			s.title = b.title
			s.cur = []rune(b.text)
			continue
		}
		s.addParagraph(b.text)
	}
	s.flush()
	return s.chunks
}

type block struct {
	heading bool
	text    string // raw heading line, or the joined paragraph
	title   string // heading title, stripped of markup
}

var (
	markdownHeading = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	// A bare leading number is only a section heading with its punctuation
	// ("1." / "3)"); multi-part numbers ("2.1") stand on their own. Plain
	// digit-led prose ("2021 saw major growth") is not a heading.
	numberedHeading = regexp.MustCompile(`^(\d+(\.\d+)+[.)]?|\d+[.)])\s+(\S.*)$`)
)

func parseBlocks(text string) []block {
	lines := strings.Split(text, "\n")
	var blocks []block
	var para []string

	flushPara := func() {
		if len(para) > 0 {
			blocks = append(blocks, block{text: strings.Join(para, "\n")})
			para = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushPara()
			continue
		}
		if title, ok := headingTitle(trimmed); ok {
			flushPara()
			blocks = append(blocks, block{heading: true, text: trimmed, title: title})
			continue
		}
		para = append(para, trimmed)
	}
	flushPara()
	return blocks
}

// headingTitle classifies a line as a heading, in precedence order:
// markdown, numbered section, ALL-CAPS.
func headingTitle(line string) (string, bool) {
	if m := markdownHeading.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if len([]rune(line)) <= 100 && !strings.HasSuffix(line, ".") {
		if m := numberedHeading.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[3]), true
		}
	}
	if isAllCapsHeading(line) {
		return line, true
	}
	return "", false
}

func isAllCapsHeading(line string) bool {
	if len([]rune(line)) > 80 || strings.HasSuffix(line, ".") {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

type splitter struct {
	maxSize int
	overlap int

	chunks []Chunk
	cur    []rune
	title  string
	last   string // text of the most recently flushed chunk, for seeding
}

func (s *splitter) flush() {
	if len(s.cur) == 0 {
		return
	}
	text := string(s.cur)
	s.chunks = append(s.chunks, Chunk{
		Text:         text,
		SectionTitle: s.title,
		Index:        len(s.chunks),
	})
	s.last = text
	s.cur = nil
}

// flushAndSeed closes the current chunk and starts the next one with the
// previous chunk's trailing overlap characters.
func (s *splitter) flushAndSeed() {
	s.flush()
	if s.overlap == 0 || s.last == "" {
		return
	}
	tail := []rune(s.last)
	if len(tail) > s.overlap {
		tail = tail[len(tail)-s.overlap:]
	}
	s.cur = append(s.cur, tail...)
}

func (s *splitter) append(piece []rune, withSep bool) {
	if withSep {
		s.cur = append(s.cur, '\n', '\n')
	}
	s.cur = append(s.cur, piece...)
}

func (s *splitter) addParagraph(p string) {
	pr := []rune(p)
	sep := 0
	if len(s.cur) > 0 {
		sep = 2
	}

	// Fits in the current chunk.
	if len(s.cur)+sep+len(pr) <= s.maxSize {
		s.append(pr, sep > 0)
		return
	}

	// Fits in a fresh chunk together with the overlap seed: cut at this
	// paragraph boundary.
	if len(s.cur) > 0 && s.overlap+2+len(pr) <= s.maxSize {
		s.flushAndSeed()
		s.append(pr, len(s.cur) > 0)
		return
	}

	s.fillSentences(pr)
}

// fillSentences streams an oversized paragraph into the current and
// following chunks, cutting at the nearest sentence boundary that still
// fits. Continuations run straight on from the overlap seed, without a
// paragraph separator, so the seed really is the preceding context.
func (s *splitter) fillSentences(pr []rune) {
	rest := pr
	continuation := false

	for len(rest) > 0 {
		sep := 0
		if len(s.cur) > 0 && !continuation {
			sep = 2
		}
		avail := s.maxSize - len(s.cur) - sep
		if avail <= 0 {
			s.flushAndSeed()
			continuation = false
			continue
		}
		if len(rest) <= avail {
			s.append(rest, sep > 0)
			return
		}

		cut := sentenceCut(rest, avail)
		s.append(rest[:cut], sep > 0)
		rest = rest[cut:]
		s.flushAndSeed()
		continuation = true
	}
}

// sentenceCut returns the cut position for a piece of at most limit runes,
// preferring the last sentence boundary; falls back to the last space, then
// to a raw cut.
func sentenceCut(r []rune, limit int) int {
	if limit >= len(r) {
		return len(r)
	}
	lastSpace := -1
	lastSentence := -1
	for i := 1; i <= limit; i++ {
		prev := r[i-1]
		if prev == '.' || prev == '!' || prev == '?' {
			if i == len(r) || unicode.IsSpace(r[i]) {
				lastSentence = i
			}
		}
		if unicode.IsSpace(prev) {
			lastSpace = i
		}
	}
	cut := lastSentence
	if cut <= 0 {
		cut = lastSpace
	}
	if cut <= 0 {
		return limit
	}
	// Keep the boundary whitespace with the finished chunk so the remainder
	// starts on a clean character.
	for cut < limit && unicode.IsSpace(r[cut]) {
		cut++
	}
	return cut
}
