package htmldoc

import (
	"strings"

	"github.com/opmodel/tscompiler/internal/span"
)

// voidElements never have a closing tag or children (HTML5 void element
// list, trimmed to the subset template markup actually uses).
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Parse tokenizes src into a Node tree rooted at a DocumentNode. It accepts
// nested elements, self-closing tags, quoted attribute values, text, and
// comments — the constructs template markup actually uses — and is a
// reference adapter standing in for the opaque HTML parser spec.md assumes
// upstream of the compiler (see package doc). It is not a general HTML5
// parser: no implied tag closing, no foreign content (svg/mathml) handling,
// no encoding sniffing.
func Parse(src string) (*Node, error) {
	p := &parser{src: src}
	return p.parseDocument()
}

type parser struct {
	src string
	pos int
}

func (p *parser) parseDocument() (*Node, error) {
	root := &Node{Type: DocumentNode, Loc: span.NewTextSpan(0, len(p.src))}
	if err := p.parseChildren(root, ""); err != nil {
		return nil, err
	}
	return root, nil
}

// parseChildren appends nodes to parent until EOF or, if closingTag != "",
// until it consumes that tag's closing sequence.
func (p *parser) parseChildren(parent *Node, closingTag string) error {
	for p.pos < len(p.src) {
		if closingTag != "" && p.atClosingTag(closingTag) {
			p.consumeClosingTag(closingTag)
			return nil
		}
		if strings.HasPrefix(p.src[p.pos:], "<!--") {
			node, err := p.parseComment()
			if err != nil {
				return err
			}
			parent.AppendChild(node)
			continue
		}
		if p.pos < len(p.src) && p.src[p.pos] == '<' && p.pos+1 < len(p.src) && isNameStart(p.src[p.pos+1]) {
			node, err := p.parseElement()
			if err != nil {
				return err
			}
			parent.AppendChild(node)
			continue
		}
		node := p.parseText()
		parent.AppendChild(node)
	}
	return nil
}

func (p *parser) atClosingTag(tag string) bool {
	rest := p.src[p.pos:]
	if !strings.HasPrefix(rest, "</") {
		return false
	}
	name := rest[2:]
	end := strings.IndexByte(name, '>')
	if end < 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(name[:end]), tag)
}

func (p *parser) consumeClosingTag(tag string) {
	start := p.pos
	end := strings.IndexByte(p.src[p.pos:], '>')
	p.pos += end + 1
	_ = start
	_ = tag
}

func (p *parser) parseComment() (*Node, error) {
	start := p.pos
	end := strings.Index(p.src[p.pos:], "-->")
	if end < 0 {
		return nil, &ParseError{Message: "unterminated comment", Offset: start}
	}
	body := p.src[p.pos+4 : p.pos+end]
	p.pos += end + 3
	return &Node{Type: CommentNode, Data: body, Loc: span.NewTextSpan(start, p.pos)}, nil
}

func (p *parser) parseText() *Node {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '<' {
		p.pos++
	}
	text := p.src[start:p.pos]
	return &Node{Type: TextNode, Data: text, Loc: span.NewTextSpan(start, p.pos)}
}

func (p *parser) parseElement() (*Node, error) {
	nodeStart := p.pos
	p.pos++ // consume '<'
	nameStart := p.pos
	for p.pos < len(p.src) && isNamePart(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[nameStart:p.pos]

	node := &Node{Type: ElementNode, Data: name}
	attrs, selfClosed, err := p.parseAttrs()
	if err != nil {
		return nil, err
	}
	node.Attr = attrs
	node.SelfClosed = selfClosed
	node.StartTagSource = p.src[nodeStart:p.pos]
	node.TagLoc = span.NewTextSpan(nodeStart, p.pos)

	if selfClosed || voidElements[strings.ToLower(name)] {
		node.Loc = node.TagLoc
		return node, nil
	}

	if err := p.parseChildren(node, name); err != nil {
		return nil, err
	}
	closeEnd := p.pos
	node.CloseTagLoc = span.NewTextSpan(closeEnd-len("</"+name+">"), closeEnd)
	node.Loc = span.NewTextSpan(nodeStart, closeEnd)
	return node, nil
}

// parseAttrs consumes up to the terminating '>' (or "/>") of a start tag,
// recording each attribute's name/value spans relative to the document.
func (p *parser) parseAttrs() ([]Attr, bool, error) {
	var attrs []Attr
	for {
		p.skipWhitespace()
		if p.pos >= len(p.src) {
			return nil, false, &ParseError{Message: "unterminated start tag", Offset: p.pos}
		}
		if p.src[p.pos] == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '>' {
			p.pos += 2
			return attrs, true, nil
		}
		if p.src[p.pos] == '>' {
			p.pos++
			return attrs, false, nil
		}
		nameStart := p.pos
		for p.pos < len(p.src) && isAttrNameChar(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == nameStart {
			return nil, false, &ParseError{Message: "expected attribute name or '>'", Offset: p.pos}
		}
		name := p.src[nameStart:p.pos]
		nameSpan := span.NewTextSpan(nameStart, p.pos)

		p.skipWhitespace()
		var value string
		valSpan := span.NewTextSpan(p.pos, p.pos)
		if p.pos < len(p.src) && p.src[p.pos] == '=' {
			p.pos++
			p.skipWhitespace()
			value, valSpan = p.parseAttrValue()
		}
		attrs = append(attrs, Attr{Name: name, Value: value, NameSpan: nameSpan, ValueSpan: valSpan})
	}
}

func (p *parser) parseAttrValue() (string, span.TextSpan) {
	if p.pos < len(p.src) && (p.src[p.pos] == '"' || p.src[p.pos] == '\'') {
		quote := p.src[p.pos]
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != quote {
			p.pos++
		}
		value := p.src[start:p.pos]
		valSpan := span.NewTextSpan(start, p.pos)
		if p.pos < len(p.src) {
			p.pos++ // closing quote
		}
		return value, valSpan
	}
	start := p.pos
	for p.pos < len(p.src) && !isWhitespace(p.src[p.pos]) && p.src[p.pos] != '>' {
		p.pos++
	}
	return p.src[start:p.pos], span.NewTextSpan(start, p.pos)
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.src) && isWhitespace(p.src[p.pos]) {
		p.pos++
	}
}

func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '.' || c == ':'
}

func isAttrNameChar(c byte) bool {
	return !isWhitespace(c) && c != '=' && c != '>' && c != '/'
}

// ParseError reports a malformed HTML fragment.
type ParseError struct {
	Message string
	Offset  int
}

func (e *ParseError) Error() string { return e.Message }
