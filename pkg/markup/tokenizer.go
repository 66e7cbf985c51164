package markup

import (
	"fmt"
	gohtml "html"
	"sort"
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

type Token struct {
	Type        TokenType
	Tag         string
	Attributes  []Attribute
	Text        string
	SelfClosing bool
	Pos         int
}

// Tokenizer splits template markup into tags and text. Unlike HTML, tag and
// attribute names keep their case and attributes keep their order.
type Tokenizer struct {
	file       string
	input      string
	pos        int
	lineStarts []int
}

func NewTokenizer(file, input string) *Tokenizer {
	t := &Tokenizer{file: file, input: input, lineStarts: []int{0}}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			t.lineStarts = append(t.lineStarts, i+1)
		}
	}
	return t
}

// Position converts a byte offset to a 1-based line and column.
func (t *Tokenizer) Position(pos int) (int, int) {
	line := sort.Search(len(t.lineStarts), func(i int) bool { return t.lineStarts[i] > pos }) - 1
	return line + 1, pos - t.lineStarts[line] + 1
}

func (t *Tokenizer) errorAt(pos int, format string, args ...any) error {
	line, col := t.Position(pos)
	return &Error{File: t.file, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (t *Tokenizer) NextToken() (Token, error) {
	if t.pos >= len(t.input) {
		return Token{Type: TokenEOF, Pos: t.pos}, nil
	}
	if t.input[t.pos] == '<' {
		return t.readTag()
	}
	return t.readText()
}

func (t *Tokenizer) readTag() (Token, error) {
	start := t.pos
	t.pos++

	// <!-- comments -->
	if strings.HasPrefix(t.input[t.pos:], "!--") {
		end := strings.Index(t.input[t.pos+3:], "-->")
		if end == -1 {
			return Token{}, t.errorAt(start, "unterminated comment")
		}
		t.pos += 3 + end + 3
		return t.NextToken()
	}
	// <?xml ...?>
	if strings.HasPrefix(t.input[t.pos:], "?") {
		end := strings.Index(t.input[t.pos:], "?>")
		if end == -1 {
			return Token{}, t.errorAt(start, "unterminated processing instruction")
		}
		t.pos += end + 2
		return t.NextToken()
	}

	isEndTag := false
	if t.pos < len(t.input) && t.input[t.pos] == '/' {
		isEndTag = true
		t.pos++
	}
	tag := t.readName()
	if tag == "" {
		return Token{}, t.errorAt(t.pos, "expected tag name")
	}
	if isEndTag {
		t.skipWhitespace()
		if t.pos >= len(t.input) || t.input[t.pos] != '>' {
			return Token{}, t.errorAt(t.pos, "expected '>' to close </%s", tag)
		}
		t.pos++
		return Token{Type: TokenEndTag, Tag: tag, Pos: start}, nil
	}
	var attrs []Attribute
	for {
		t.skipWhitespace()
		if t.pos >= len(t.input) {
			return Token{}, t.errorAt(start, "unexpected end of input in <%s>", tag)
		}
		switch t.input[t.pos] {
		case '>':
			t.pos++
			return Token{Type: TokenStartTag, Tag: tag, Attributes: attrs, Pos: start}, nil
		case '/':
			t.pos++
			t.skipWhitespace()
			if t.pos < len(t.input) && t.input[t.pos] == '>' {
				t.pos++
				return Token{Type: TokenStartTag, Tag: tag, Attributes: attrs, SelfClosing: true, Pos: start}, nil
			}
			return Token{}, t.errorAt(t.pos, "expected '>' after '/'")
		}
		attr, err := t.readAttribute()
		if err != nil {
			return Token{}, err
		}
		for _, a := range attrs {
			if a.Key == attr.Key {
				return Token{}, t.errorAt(t.pos, "duplicate attribute %q on <%s>", attr.Key, tag)
			}
		}
		attrs = append(attrs, attr)
	}
}

func (t *Tokenizer) readName() string {
	start := t.pos
	for t.pos < len(t.input) && isNameChar(t.input[t.pos]) {
		t.pos++
	}
	return t.input[start:t.pos]
}

func (t *Tokenizer) readAttribute() (Attribute, error) {
	start := t.pos
	key := t.readName()
	if key == "" {
		return Attribute{}, t.errorAt(t.pos, "expected attribute name")
	}
	line, col := t.Position(start)
	t.skipWhitespace()
	if t.pos >= len(t.input) || t.input[t.pos] != '=' {
		typ, flags := classifyAttribute(key, "")
		return Attribute{Key: key, Type: typ, Flags: flags, Line: line, Column: col}, nil
	}
	t.pos++
	t.skipWhitespace()
	value, err := t.readAttributeValue()
	if err != nil {
		return Attribute{}, err
	}
	typ, flags := classifyAttribute(key, value)
	return Attribute{Key: key, Value: value, Type: typ, Flags: flags, Line: line, Column: col}, nil
}

func (t *Tokenizer) readAttributeValue() (string, error) {
	if t.pos >= len(t.input) {
		return "", t.errorAt(t.pos, "expected attribute value")
	}
	quote := t.input[t.pos]
	if quote != '"' && quote != '\'' {
		return "", t.errorAt(t.pos, "attribute values must be quoted")
	}
	start := t.pos
	t.pos++
	end := strings.IndexByte(t.input[t.pos:], quote)
	if end == -1 {
		return "", t.errorAt(start, "unterminated attribute value")
	}
	value := t.input[t.pos : t.pos+end]
	t.pos += end + 1
	return gohtml.UnescapeString(value), nil
}

func (t *Tokenizer) readText() (Token, error) {
	start := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != '<' {
		t.pos++
	}
	raw := t.input[start:t.pos]
	if strings.TrimSpace(raw) == "" {
		return t.NextToken()
	}
	return Token{Type: TokenText, Text: gohtml.UnescapeString(normalizeSpace(raw)), Pos: start}, nil
}

// normalizeSpace collapses whitespace runs and trims the ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

func isNameChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_' || ch == ':' || ch == '.' || ch == '$'
}
