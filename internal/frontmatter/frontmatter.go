// Package frontmatter extracts the optional `---` delimited metadata header of
// a content file and decodes its `key: value` lines.
//
// Recognition is anchored to the first byte of the file and decoding is strict:
// a single line that is not `key: value` discards the whole block.
package frontmatter

import (
	"fmt"
	"regexp"
	"strings"
)

// Delimiter opens and closes a frontmatter block. It must be alone on its line.
const Delimiter = "---"

// Block is a frontmatter region found at the start of a document.
type Block struct {
	// Lines holds the interior lines without their line terminators.
	Lines []string
	// End is the byte offset just past the closing delimiter.
	End int
}

// MalformedError reports the first interior line that is not `key: value`.
type MalformedError struct {
	Line int // 1-based line number in the source document
	Text string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("frontmatter line %d is not `key: value`: %q", e.Line, e.Text)
}

// Result is the outcome of Extract.
type Result struct {
	// Body is the document with a valid frontmatter block removed, or the
	// whole document when no valid block exists.
	Body string
	// Metadata is nil when the document has no valid frontmatter.
	Metadata map[string]string
	// Malformed is set when a block was present but rejected.
	Malformed *MalformedError
}

// HasMetadata reports whether a valid frontmatter block was decoded.
func (r Result) HasMetadata() bool { return r.Metadata != nil }

// Parser owns the compiled key/value pattern. It is safe for concurrent use.
type Parser struct {
	keyValue *regexp.Regexp
}

// NewParser compiles the key/value pattern once.
func NewParser() *Parser {
	return &Parser{
		// Key is everything before the first ": ", value is the rest of the line.
		keyValue: regexp.MustCompile(`^([^\r\n]+?): (.*)$`),
	}
}

// Split locates a frontmatter block at the very start of text. It returns the
// text after the closing delimiter and the block, or text unchanged and nil
// when the document does not open with a complete block.
func (p *Parser) Split(text string) (string, *Block) {
	pos, ok := firstLineIsDelimiter(text)
	if !ok {
		return text, nil
	}

	block := &Block{}
	for pos < len(text) {
		next := strings.IndexByte(text[pos:], '\n')
		lineEnd, advance := len(text), len(text)
		if next >= 0 {
			lineEnd = pos + next
			advance = lineEnd + 1
		}
		line := strings.TrimSuffix(text[pos:lineEnd], "\r")
		if line == Delimiter {
			block.End = pos + len(Delimiter)
			return text[block.End:], block
		}
		block.Lines = append(block.Lines, line)
		pos = advance
	}
	return text, nil
}

// Decode turns the interior of block into a mapping. Any line that is not
// `key: value` rejects the whole block. Duplicate keys keep the last value.
func (p *Parser) Decode(block *Block) (map[string]string, error) {
	fields := make(map[string]string, len(block.Lines))
	for i, line := range block.Lines {
		m := p.keyValue.FindStringSubmatch(line)
		if m == nil {
			// +2: the opening delimiter is line 1.
			return nil, &MalformedError{Line: i + 2, Text: line}
		}
		fields[m[1]] = m[2]
	}
	return fields, nil
}

// Extract runs Split then Decode. A rejected block leaves the document intact.
func (p *Parser) Extract(text string) Result {
	body, block := p.Split(text)
	if block == nil {
		return Result{Body: text}
	}
	fields, err := p.Decode(block)
	if err != nil {
		malformed, _ := err.(*MalformedError)
		return Result{Body: text, Malformed: malformed}
	}
	return Result{Body: body, Metadata: fields}
}

func firstLineIsDelimiter(text string) (int, bool) {
	switch {
	case strings.HasPrefix(text, Delimiter+"\n"):
		return len(Delimiter) + 1, true
	case strings.HasPrefix(text, Delimiter+"\r\n"):
		return len(Delimiter) + 2, true
	default:
		return 0, false
	}
}
