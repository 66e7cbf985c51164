package markup

// Parser builds a Template from tokens using an open-element stack.
type Parser struct {
	tokenizer *Tokenizer
	file      string
	stack     []*Node
}

func NewParser(file, src string) *Parser {
	return &Parser{tokenizer: NewTokenizer(file, src), file: file}
}

// Parse is shorthand for NewParser(file, src).Parse().
func Parse(file, src string) (*Template, error) {
	return NewParser(file, src).Parse()
}

func (p *Parser) Parse() (*Template, error) {
	doc := &Node{Type: ElementNode, Tag: "#document"}
	p.stack = []*Node{doc}

	for {
		tok, err := p.tokenizer.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenEOF {
			break
		}
		line, col := p.tokenizer.Position(tok.Pos)
		switch tok.Type {
		case TokenStartTag:
			node := &Node{Type: ElementNode, Tag: tok.Tag, Attributes: tok.Attributes, Line: line, Column: col}
			p.currentParent().AddChild(node)
			if !tok.SelfClosing {
				p.push(node)
			}
		case TokenEndTag:
			top := p.currentParent()
			if top == doc {
				return nil, p.tokenizer.errorAt(tok.Pos, "unexpected </%s>", tok.Tag)
			}
			if top.Tag != tok.Tag {
				return nil, p.tokenizer.errorAt(tok.Pos, "expected </%s> (opened at line %d), got </%s>", top.Tag, top.Line, tok.Tag)
			}
			p.pop()
		case TokenText:
			p.currentParent().AddChild(&Node{Type: TextNode, Text: tok.Text, Line: line, Column: col})
		}
	}
	if len(p.stack) > 1 {
		top := p.currentParent()
		return nil, &Error{File: p.file, Line: top.Line, Column: top.Column, Msg: "unclosed <" + top.Tag + ">"}
	}
	var root *Node
	for _, c := range doc.Children {
		if c.Type == TextNode {
			return nil, &Error{File: p.file, Line: c.Line, Column: c.Column, Msg: "text outside of <Template>"}
		}
		if root != nil {
			return nil, &Error{File: p.file, Line: c.Line, Column: c.Column, Msg: "a template file has exactly one root element"}
		}
		root = c
	}
	if root == nil || root.Tag != "Template" {
		return nil, &Error{File: p.file, Line: 1, Column: 1, Msg: "expected a <Template> root element"}
	}
	root.Parent = nil
	return &Template{File: p.file, Root: root}, nil
}

func (p *Parser) currentParent() *Node {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(n *Node) {
	p.stack = append(p.stack, n)
}

func (p *Parser) pop() *Node {
	n := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return n
}
