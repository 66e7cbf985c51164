package style

import (
	"fmt"
	"strings"
	"unicode"
)

// CompileOption configures Compile.
type CompileOption func(*compiler)

// WithKnownAttributes restricts attribute groups to the given attribute
// names. Without it any name is accepted.
func WithKnownAttributes(names ...string) CompileOption {
	return func(c *compiler) {
		if c.known == nil {
			c.known = make(map[string]bool)
		}
		for _, n := range names {
			c.known[n] = true
		}
	}
}

type compiler struct {
	file  string
	src   string
	pos   int
	line  int
	col   int
	known map[string]bool
	sheet *Sheet
}

// Compile parses a style sheet:
//
//	style button {
//	    PreferredWidth = 100px;
//	    Padding = 4px 8px;
//	    [hover] { BackgroundColor = #ff0000; }
//	    [attr:kind="primary"] {
//	        BackgroundColor = blue;
//	        [hover] { BackgroundColor = navy; }
//	    }
//	}
//
// Declarations accept '=' or ':'. Comments are // and /* */.
func Compile(file, src string, opts ...CompileOption) (*Sheet, error) {
	c := &compiler{file: file, src: src, line: 1, col: 1}
	for _, opt := range opts {
		opt(c)
	}
	c.sheet = &Sheet{File: file, containers: make(map[string]*Container)}
	for {
		c.skipSpace()
		if c.eof() {
			return c.sheet, nil
		}
		if err := c.parseStyle(); err != nil {
			return nil, err
		}
	}
}

// Merge copies the containers of other into s. Duplicate names are errors.
func (s *Sheet) Merge(other *Sheet) error {
	for name, cont := range other.containers {
		if prev, ok := s.containers[name]; ok {
			return &CompileError{File: cont.File, Line: cont.Line, Column: cont.Column,
				Msg: fmt.Sprintf("duplicate style id %q (first defined at %s:%d:%d)", name, prev.File, prev.Line, prev.Column)}
		}
		s.containers[name] = cont
	}
	return nil
}

// NewSheet returns an empty sheet for merging compiled files into.
func NewSheet(file string) *Sheet {
	return &Sheet{File: file, containers: make(map[string]*Container)}
}

func (c *compiler) parseStyle() error {
	line, col := c.line, c.col
	kw := c.readIdent()
	if kw != "style" {
		return c.errorAt(line, col, "expected 'style', got %q", kw)
	}
	c.skipSpace()
	line, col = c.line, c.col
	name := c.readIdent()
	if name == "" {
		return c.errorf("expected a style name")
	}
	if prev, ok := c.sheet.containers[name]; ok {
		return c.errorAt(line, col, "duplicate style id %q (first defined at line %d)", name, prev.Line)
	}
	cont := NewContainer(name)
	cont.File, cont.Line, cont.Column = c.file, line, col
	c.skipSpace()
	if err := c.expect('{'); err != nil {
		return err
	}
	if err := c.parseBody(cont, cont.Default(), StateNormal, true); err != nil {
		return err
	}
	c.sheet.containers[name] = cont
	return nil
}

// parseBody reads declarations and nested blocks up to the closing brace.
func (c *compiler) parseBody(cont *Container, g *Group, state State, allowAttr bool) error {
	for {
		c.skipSpace()
		if c.eof() {
			return c.errorf("unexpected end of file, missing '}'")
		}
		switch c.peek() {
		case '}':
			c.advance()
			return nil
		case '[':
			if err := c.parseSelectorBlock(cont, g, state, allowAttr); err != nil {
				return err
			}
		default:
			if err := c.parseDeclaration(g.block(state)); err != nil {
				return err
			}
		}
	}
}

func (c *compiler) parseSelectorBlock(cont *Container, g *Group, state State, allowAttr bool) error {
	line, col := c.line, c.col
	c.advance()
	c.skipSpace()
	sel := c.readUntil(']')
	if c.eof() {
		return c.errorAt(line, col, "unterminated selector")
	}
	c.advance()
	c.skipSpace()
	if err := c.expect('{'); err != nil {
		return err
	}
	sel = strings.TrimSpace(sel)
	switch strings.ToLower(sel) {
	case "hover", "focus", "active":
		if state != StateNormal {
			return c.errorAt(line, col, "state block [%s] cannot be nested in another state block", sel)
		}
		return c.parseBody(cont, g, stateByName[strings.ToLower(sel)], false)
	}
	if !strings.HasPrefix(sel, "attr:") {
		return c.errorAt(line, col, "unknown selector [%s]", sel)
	}
	if !allowAttr {
		return c.errorAt(line, col, "attribute block [%s] must be at the top level of a style", sel)
	}
	rule, err := parseAttributeRule(sel[len("attr:"):])
	if err != nil {
		return c.errorAt(line, col, "%v", err)
	}
	if c.known != nil && !c.known[rule.Name] {
		return c.errorAt(line, col, "unknown attribute %q in style %q", rule.Name, cont.Name)
	}
	group := newGroup(rule)
	cont.Groups = append(cont.Groups, group)
	return c.parseBody(cont, group, StateNormal, false)
}

var stateByName = map[string]State{"hover": StateHover, "focus": StateFocus, "active": StateActive}

func parseAttributeRule(s string) (*AttributeRule, error) {
	name, value, hasValue := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("attribute selector needs a name")
	}
	rule := &AttributeRule{Name: name}
	if hasValue {
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		rule.Value, rule.HasValue = value, true
	}
	return rule, nil
}

func (c *compiler) parseDeclaration(b *Block) error {
	line, col := c.line, c.col
	name := c.readIdent()
	if name == "" {
		return c.errorf("expected a property name, got %q", string(c.peek()))
	}
	c.skipSpace()
	if c.peek() != '=' && c.peek() != ':' {
		return c.errorf("expected '=' after %s", name)
	}
	c.advance()
	vline, vcol := c.line, c.col
	raw := c.readValue()
	if c.eof() || c.peek() != ';' {
		return c.errorf("expected ';' after value of %s", name)
	}
	c.advance()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c.errorAt(vline, vcol, "missing value for %s", name)
	}

	if ids, vals, ok := expandShorthand(name, raw); ok {
		if vals == nil {
			return c.errorAt(vline, vcol, "wrong number of values for %s: %q", name, raw)
		}
		for i, id := range ids {
			v, err := ParseValue(id, vals[i])
			if err != nil {
				return c.errorAt(vline, vcol, "%s: %v", name, err)
			}
			b.Set(id, v)
		}
		return nil
	}
	id, ok := LookupProperty(name)
	if !ok {
		return c.errorAt(line, col, "unknown style property %q", name)
	}
	v, err := ParseValue(id, raw)
	if err != nil {
		return c.errorAt(vline, vcol, "%s: %v", name, err)
	}
	b.Set(id, v)
	return nil
}

func (c *compiler) eof() bool {
	return c.pos >= len(c.src)
}

func (c *compiler) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}

func (c *compiler) advance() {
	if c.eof() {
		return
	}
	if c.src[c.pos] == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	c.pos++
}

func (c *compiler) expect(ch byte) error {
	if c.peek() != ch {
		return c.errorf("expected '%c'", ch)
	}
	c.advance()
	return nil
}

func (c *compiler) skipSpace() {
	for !c.eof() {
		ch := c.src[c.pos]
		switch {
		case unicode.IsSpace(rune(ch)):
			c.advance()
		case ch == '/' && c.pos+1 < len(c.src) && c.src[c.pos+1] == '/':
			for !c.eof() && c.peek() != '\n' {
				c.advance()
			}
		case ch == '/' && c.pos+1 < len(c.src) && c.src[c.pos+1] == '*':
			c.advance()
			c.advance()
			for !c.eof() && !(c.peek() == '*' && c.pos+1 < len(c.src) && c.src[c.pos+1] == '/') {
				c.advance()
			}
			c.advance()
			c.advance()
		default:
			return
		}
	}
}

func (c *compiler) readIdent() string {
	start := c.pos
	for !c.eof() {
		ch := c.src[c.pos]
		if ch == '_' || ch == '-' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) {
			c.advance()
			continue
		}
		break
	}
	return c.src[start:c.pos]
}

func (c *compiler) readUntil(end byte) string {
	start := c.pos
	for !c.eof() && c.peek() != end {
		c.advance()
	}
	return c.src[start:c.pos]
}

// readValue reads up to the terminating ';', skipping over quoted text and
// parenthesized groups.
func (c *compiler) readValue() string {
	start := c.pos
	depth := 0
	var quote byte
	for !c.eof() {
		ch := c.peek()
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case (ch == ';' || ch == '}' || ch == '\n') && depth == 0:
			return c.src[start:c.pos]
		}
		c.advance()
	}
	return c.src[start:c.pos]
}

func (c *compiler) errorf(format string, args ...any) error {
	return c.errorAt(c.line, c.col, format, args...)
}

func (c *compiler) errorAt(line, col int, format string, args ...any) error {
	return &CompileError{File: c.file, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}
