package mustache

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a template token
type TokenType int

const (
	TokenText       TokenType = iota
	TokenName                 // {{name}}
	TokenUnescaped            // {{{name}}} or {{&name}}
	TokenSection              // {{#name}}
	TokenInverted             // {{^name}}
	TokenClose                // {{/name}}
	TokenPartial              // {{>name}}
	TokenComment              // {{!comment}}
	TokenDelimiters           // {{=<% %>=}}
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenName:
		return "name"
	case TokenUnescaped:
		return "unescaped"
	case TokenSection:
		return "section"
	case TokenInverted:
		return "inverted"
	case TokenClose:
		return "close"
	case TokenPartial:
		return "partial"
	case TokenComment:
		return "comment"
	case TokenDelimiters:
		return "delimiters"
	default:
		return "unknown"
	}
}

// Token represents a parsed template token.
//
// Start and End are byte offsets of the token in the template it was parsed
// from. Section and inverted tokens own their Children; SectionEnd is the
// offset at which the matching close tag begins, so
// template[tok.End:tok.SectionEnd] is the raw text inside the section.
type Token struct {
	Type       TokenType
	Value      string
	Start      int
	End        int
	Children   []*Token
	SectionEnd int
}

func (t *Token) String() string {
	kind := t.Type.String()
	kind = strings.ToUpper(kind[:1]) + kind[1:]
	switch t.Type {
	case TokenText:
		return fmt.Sprintf("%s(%q)", kind, t.Value)
	case TokenSection, TokenInverted:
		return fmt.Sprintf("%s(%s, %d children)", kind, t.Value, len(t.Children))
	default:
		return fmt.Sprintf("%s(%s)", kind, t.Value)
	}
}

// Tags is the pair of delimiters that open and close a tag.
type Tags struct {
	Open  string
	Close string
}

// DefaultTags are the mustaches.
var DefaultTags = Tags{Open: "{{", Close: "}}"}

func (t Tags) String() string {
	return t.Open + " " + t.Close
}

// ParseTags parses a space separated delimiter pair such as "<% %>".
func ParseTags(s string) (Tags, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Tags{}, &SyntaxError{Message: "invalid tags", Token: s}
	}
	return Tags{Open: parts[0], Close: parts[1]}, nil
}

var (
	whiteRe = regexp.MustCompile(`^\s*`)
	eqRe    = regexp.MustCompile(`\s*=`)
	curlyRe = regexp.MustCompile(`\s*\}`)
	tagRe   = regexp.MustCompile(`#|\^|/|>|\{|&|=|!`)
)

// tagPatterns holds the regular expressions for one delimiter pair. open and
// close absorb whitespace on the inner side; closeCurly ends a triple mustache.
type tagPatterns struct {
	open       *regexp.Regexp
	close      *regexp.Regexp
	closeCurly *regexp.Regexp
}

func compileTagPatterns(tags Tags) tagPatterns {
	return tagPatterns{
		open:       regexp.MustCompile(regexp.QuoteMeta(tags.Open) + `\s*`),
		close:      regexp.MustCompile(`\s*` + regexp.QuoteMeta(tags.Close)),
		closeCurly: regexp.MustCompile(`\s*` + regexp.QuoteMeta("}"+tags.Close)),
	}
}

// tokenizer accumulates the flat token list for one parse. Whitespace tokens on
// stand-alone lines are marked in removed rather than deleted, and dropped when
// the list is squashed.
type tokenizer struct {
	template string
	scanner  *Scanner
	tags     Tags
	patterns tagPatterns

	tokens   []*Token
	removed  []bool
	spaces   []int
	sections []*Token
	hasTag   bool
	nonSpace bool
}

func (t *tokenizer) push(tok *Token) {
	t.tokens = append(t.tokens, tok)
	t.removed = append(t.removed, false)
}

// stripSpace drops the whitespace of the current line if it held a tag and
// nothing else but whitespace.
func (t *tokenizer) stripSpace() {
	if t.hasTag && !t.nonSpace {
		for _, i := range t.spaces {
			t.removed[i] = true
		}
	}
	t.spaces = t.spaces[:0]
	t.hasTag = false
	t.nonSpace = false
}

func (t *tokenizer) syntaxError(message, token string, position int) error {
	return NewSyntaxError(message, token, t.template, position)
}

func (t *tokenizer) run() error {
	s := t.scanner
	for !s.EOS() {
		start := s.Pos()

		// Text between tags, one token per character.
		value := s.ScanUntil(t.patterns.open)
		for i := 0; i < len(value); {
			r, size := utf8.DecodeRuneInString(value[i:])
			chr := value[i : i+size]

			if unicode.IsSpace(r) {
				t.spaces = append(t.spaces, len(t.tokens))
			} else {
				t.nonSpace = true
			}

			t.push(&Token{Type: TokenText, Value: chr, Start: start, End: start + size})
			start += size
			i += size

			if r == '\n' {
				t.stripSpace()
			}
		}

		if s.Scan(t.patterns.open) == "" {
			break
		}
		t.hasTag = true

		sigil := s.Scan(tagRe)
		typ := TokenName
		switch sigil {
		case "#":
			typ = TokenSection
		case "^":
			typ = TokenInverted
		case "/":
			typ = TokenClose
		case ">":
			typ = TokenPartial
		case "{", "&":
			typ = TokenUnescaped
		case "=":
			typ = TokenDelimiters
		case "!":
			typ = TokenComment
		}
		s.Scan(whiteRe)

		switch {
		case typ == TokenDelimiters:
			value = s.ScanUntil(eqRe)
			s.Scan(eqRe)
			s.ScanUntil(t.patterns.close)
		case sigil == "{":
			value = s.ScanUntil(t.patterns.closeCurly)
			s.Scan(curlyRe)
			s.ScanUntil(t.patterns.close)
		default:
			value = s.ScanUntil(t.patterns.close)
		}

		if s.Scan(t.patterns.close) == "" {
			return t.syntaxError("unclosed tag", sigil+value, s.Pos())
		}

		tok := &Token{Type: typ, Value: value, Start: start, End: s.Pos()}
		t.push(tok)

		switch typ {
		case TokenSection, TokenInverted:
			t.sections = append(t.sections, tok)
		case TokenClose:
			if len(t.sections) == 0 {
				return t.syntaxError(fmt.Sprintf("unopened section %q", value), value, start)
			}
			open := t.sections[len(t.sections)-1]
			t.sections = t.sections[:len(t.sections)-1]
			if open.Value != value {
				return t.syntaxError(fmt.Sprintf("unclosed section %q", open.Value), open.Value, start)
			}
		case TokenName, TokenUnescaped:
			t.nonSpace = true
		case TokenDelimiters:
			tags, err := ParseTags(value)
			if err != nil {
				return t.syntaxError(fmt.Sprintf("invalid tags %q", value), value, start)
			}
			t.tags = tags
			t.patterns = compileTagPatterns(tags)
		}
	}

	if len(t.sections) > 0 {
		open := t.sections[len(t.sections)-1]
		return t.syntaxError(fmt.Sprintf("unclosed section %q", open.Value), open.Value, s.Pos())
	}
	return nil
}

// Tokenize breaks a template into a flat list of tokens. Consecutive text is
// merged into a single token, whitespace on stand-alone tag lines is removed,
// and close tokens are kept.
func Tokenize(template string, tags Tags) ([]*Token, error) {
	if tags.Open == "" || tags.Close == "" {
		return nil, &SyntaxError{Message: "invalid tags", Token: tags.String()}
	}

	logger := GetLogger()
	if logger.IsDebugMode() {
		logger.WithFields(Fields{
			"length": len(template),
			"tags":   tags.String(),
		}).Debug("Starting tokenization")
	}

	t := &tokenizer{
		template: template,
		scanner:  NewScanner(template),
		tags:     tags,
	}
	t.patterns = compileTagPatterns(tags)

	if err := t.run(); err != nil {
		return nil, err
	}

	tokens := squashTokens(t.tokens, t.removed)

	if logger.IsDebugMode() {
		logger.WithField("token_count", len(tokens)).Debug("Tokenization complete")
	}
	return tokens, nil
}

// ParseTemplate tokenizes a template and nests the tokens into a tree. It does
// not consult any cache; see Engine.Parse for the cached form.
func ParseTemplate(template string, tags Tags) ([]*Token, error) {
	tokens, err := Tokenize(template, tags)
	if err != nil {
		return nil, err
	}
	return nestTokens(tokens), nil
}

// squashTokens drops removed tokens and merges each run of adjacent text
// tokens into one.
func squashTokens(tokens []*Token, removed []bool) []*Token {
	squashed := make([]*Token, 0, len(tokens))

	var run *Token
	var text strings.Builder
	flush := func() {
		if run != nil {
			run.Value = text.String()
			text.Reset()
			run = nil
		}
	}

	for i, tok := range tokens {
		if removed[i] {
			continue
		}
		if tok.Type != TokenText {
			flush()
			squashed = append(squashed, tok)
			continue
		}
		if run == nil {
			run = &Token{Type: TokenText, Start: tok.Start}
			squashed = append(squashed, run)
		}
		text.WriteString(tok.Value)
		run.End = tok.End
	}
	flush()

	return squashed
}

// nestTokens forms a flat token list into a tree in which each section owns
// the tokens up to its close tag. Close tokens are consumed. The input must be
// balanced, which Tokenize guarantees.
func nestTokens(tokens []*Token) []*Token {
	nested := make([]*Token, 0, len(tokens))
	collector := &nested
	var sections []*Token

	for _, tok := range tokens {
		switch tok.Type {
		case TokenSection, TokenInverted:
			*collector = append(*collector, tok)
			sections = append(sections, tok)
			tok.Children = []*Token{}
			collector = &tok.Children
		case TokenClose:
			section := sections[len(sections)-1]
			sections = sections[:len(sections)-1]
			section.SectionEnd = tok.Start
			if len(sections) > 0 {
				collector = &sections[len(sections)-1].Children
			} else {
				collector = &nested
			}
		default:
			*collector = append(*collector, tok)
		}
	}

	return nested
}

// lineColumn converts a byte offset into a 1-based line and rune column.
func lineColumn(s string, offset int) (line, column int) {
	if offset > len(s) {
		offset = len(s)
	}
	if offset < 0 {
		offset = 0
	}
	line = 1 + strings.Count(s[:offset], "\n")
	lineStart := strings.LastIndexByte(s[:offset], '\n') + 1
	column = utf8.RuneCountInString(s[lineStart:offset]) + 1
	return line, column
}
