package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/types"
)

// scanner turns canonicalized source runes into tokens on demand.
type scanner struct {
	src      []rune
	pos      int
	opts     *types.Options
	idents   []string
	patterns bool
}

func newScanner(src string, opts *types.Options, idents []string, patterns bool) *scanner {
	return &scanner{
		src:      canonicalize(src),
		opts:     opts,
		idents:   idents,
		patterns: patterns,
	}
}

// canonicalize applies NFC, drops control characters, folds runs of line
// breaks, tabs and invisible separators (with any spaces inside the run)
// to one space and respells Unicode math symbols as LaTeX. Runs of plain
// spaces are left alone for \text.
func canonicalize(src string) []rune {
	out, _ := canonicalMap(src)
	return out
}

// canonicalMap is canonicalize that also reports, for every output rune,
// the index of the rune of the NFC form of src it came from.
func canonicalMap(src string) (out []rune, origin []int) {
	raw := []rune(norm.NFC.String(src))
	out = make([]rune, 0, len(raw))
	origin = make([]int, 0, len(raw))
	emit := func(i int, rs ...rune) {
		for _, r := range rs {
			out = append(out, r)
			origin = append(origin, i)
		}
	}
	folded := false
	for i, r := range raw {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' && !invisible[r] {
			folded = false
		}
		switch {
		case r == ' ' && folded:
			// part of the folded run
		case r == '\t' || r == '\n' || r == '\r' || invisible[r]:
			if len(out) == 0 || out[len(out)-1] != ' ' {
				emit(i, ' ')
			}
			folded = true
		case r < 0x20 || r == 0x7f:
			// dropped
		case unicodeLatex[r] != "":
			spelling := unicodeLatex[r]
			emit(i, []rune(spelling)...)
			if strings.HasPrefix(spelling, "\\") {
				emit(i, ' ')
			}
		default:
			emit(i, r)
		}
	}
	return out, origin
}

// Locate maps a rune offset reported by the parser back into src. It
// returns the 1-based line and rune column of that position and the text
// of the line, NFC composed. A negative offset locates the start of src.
func Locate(src string, offset int) (line, column int, text string) {
	raw := []rune(norm.NFC.String(src))
	_, origin := canonicalMap(src)

	pos := 0
	switch {
	case offset >= len(origin):
		pos = len(raw)
	case offset >= 0:
		pos = origin[offset]
	}

	line, start := 1, 0
	for i := 0; i < pos; i++ {
		if raw[i] == '\n' {
			line++
			start = i + 1
		}
	}
	end := start
	for end < len(raw) && raw[end] != '\n' {
		end++
	}
	text = strings.TrimSuffix(string(raw[start:end]), "\r")
	return line, pos - start + 1, text
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func (s *scanner) peekRune(off int) rune {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && s.src[s.pos] == ' ' {
		s.pos++
	}
}

func (s *scanner) next() token {
	s.skipSpace()
	if s.pos >= len(s.src) {
		return token{kind: TokEOF, pos: s.pos}
	}

	start := s.pos
	c := s.src[s.pos]
	switch {
	case isDigit(c):
		return s.number()
	case c == s.opts.DecimalSeparator && isDigit(s.peekRune(1)):
		return s.number()
	case isLetter(c):
		return s.identifier()
	case c == '\\':
		return s.command()
	}

	s.pos++
	tok := token{pos: start}
	switch c {
	case '+':
		tok.kind = TokAdd
	case '-':
		tok.kind = TokSub
	case '*':
		tok.kind = TokMul
	case '/':
		tok.kind = TokSlash
	case '^':
		tok.kind = TokCaret
	case '_':
		tok.kind = TokUnderscore
	case ',', ';':
		tok.kind = TokComma
	case ':':
		if s.patterns && s.legacyType() {
			return s.legacy(start)
		}
		tok.kind = TokColon
	case '!':
		tok.kind = TokBang
	case '%':
		tok.kind = TokPercent
	case '\'':
		tok.kind = TokPrime
	case '|':
		tok.kind = TokPipe
	case '(':
		tok.kind = TokLeftParen
	case ')':
		tok.kind = TokRightParen
	case '[':
		tok.kind = TokLeftBracket
	case ']':
		tok.kind = TokRightBracket
	case '{':
		tok.kind = TokLeftBrace
	case '}':
		tok.kind = TokRightBrace
	case '&':
		tok.kind = TokAmp
	case '=':
		tok.kind = TokEql
	case '<':
		tok.kind = TokLt
	case '>':
		tok.kind = TokGt
	case '.':
		tok.kind = TokDot
	case '$':
		// math-mode delimiters carry no meaning here
		return s.next()
	case '?':
		if !s.patterns {
			diag.Fail(diag.KindLexical, diag.CodeInvalidChar, start, "?")
		}
		tok.kind = TokWildcard
		tok.lexeme = "?"
	default:
		diag.Fail(diag.KindLexical, diag.CodeInvalidChar, start, string(c))
	}
	return tok
}

// legacyType reports whether the input continues with {N} or {V}.
func (s *scanner) legacyType() bool {
	if s.peekRune(0) != '{' || s.peekRune(2) != '}' {
		return false
	}
	switch s.peekRune(1) {
	case 'N', 'V':
		return true
	}
	return false
}

func (s *scanner) legacy(start int) token {
	name := "number"
	if s.src[s.pos+1] == 'V' {
		name = "variable"
	}
	s.pos += 3
	return token{kind: TokType, lexeme: name, pos: start}
}

func (s *scanner) isGroupSeparator(r rune) bool {
	return s.opts.AllowThousandsSeparator &&
		r != s.opts.DecimalSeparator &&
		r != ' ' &&
		s.opts.IsThousandsSeparator(r)
}

// spaceGroup reports the end of a whitespace digit-group separator at the
// current position, and whether it was the explicit "\ " escape. Plain
// whitespace only groups when exactly three digits follow.
func (s *scanner) spaceGroup() (end int, explicit bool, ok bool) {
	i := s.pos
	for i < len(s.src) {
		if s.src[i] == ' ' {
			i++
			continue
		}
		if s.src[i] == '\\' && i+1 < len(s.src) && (s.src[i+1] == ' ' || s.src[i+1] == ',') {
			explicit = true
			i += 2
			continue
		}
		break
	}
	if i == s.pos || !s.opts.AllowThousandsSeparator {
		return s.pos, false, false
	}
	digits := 0
	for j := i; j < len(s.src) && isDigit(s.src[j]); j++ {
		digits++
	}
	if digits == 0 {
		return s.pos, false, false
	}
	if !explicit && digits != 3 {
		return s.pos, false, false
	}
	return i, explicit, true
}

func (s *scanner) misplaced() {
	diag.Fail(diag.KindLexical, diag.CodeMisplacedSeparator, s.pos)
}

func (s *scanner) number() token {
	start := s.pos
	var sb strings.Builder

	group := 0
	grouped := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isDigit(c) {
			sb.WriteRune(c)
			group++
			s.pos++
			continue
		}
		if s.isGroupSeparator(c) && isDigit(s.peekRune(1)) {
			if (grouped && group != 3) || group > 3 || group == 0 {
				s.misplaced()
			}
			grouped = true
			group = 0
			s.pos++
			continue
		}
		if c == ' ' || c == '\\' {
			end, _, ok := s.spaceGroup()
			if ok {
				if (grouped && group != 3) || group > 3 || group == 0 {
					s.misplaced()
				}
				grouped = true
				group = 0
				s.pos = end
				continue
			}
		}
		break
	}
	if grouped && group != 3 {
		s.misplaced()
	}

	if s.pos < len(s.src) && s.src[s.pos] == s.opts.DecimalSeparator {
		if !s.opts.AllowDecimal {
			diag.Fail(diag.KindLexical, diag.CodeInvalidNumber, s.pos, string(s.src[start:s.pos+1]))
		}
		if sb.Len() == 0 {
			sb.WriteByte('0')
		}
		sb.WriteByte('.')
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			sb.WriteRune(s.src[s.pos])
			s.pos++
		}
		if s.pos < len(s.src) && s.isGroupSeparator(s.src[s.pos]) && isDigit(s.peekRune(1)) {
			s.misplaced()
		}
	}
	return token{kind: TokNum, lexeme: sb.String(), pos: start}
}

func (s *scanner) hasPrefix(word string) bool {
	i := s.pos
	for _, r := range word {
		if i >= len(s.src) || s.src[i] != r {
			return false
		}
		i++
	}
	return true
}

// identifier matches the longest known name, or a single letter.
func (s *scanner) identifier() token {
	start := s.pos
	for _, id := range s.idents {
		if s.hasPrefix(id) {
			s.pos += len([]rune(id))
			return wordToken(id, start)
		}
	}
	s.pos++
	return token{kind: TokVar, lexeme: string(s.src[start]), pos: start}
}

// wordToken promotes bare function names to their keyword.
func wordToken(word string, pos int) token {
	if k, ok := keywords["\\"+word]; ok {
		if _, fn := functionOps[k]; fn || k == TokLog {
			return token{kind: k, lexeme: "\\" + word, pos: pos}
		}
	}
	return token{kind: TokVar, lexeme: word, pos: pos}
}

func (s *scanner) command() token {
	start := s.pos
	s.pos++ // backslash
	if s.pos >= len(s.src) {
		diag.Fail(diag.KindLexical, diag.CodeInvalidChar, start, "\\")
	}

	c := s.src[s.pos]
	if !isLetter(c) {
		s.pos++
		tok := token{pos: start}
		switch c {
		case '\\':
			tok.kind = TokNewRow
		case '{':
			tok.kind = TokLeftSet
		case '}':
			tok.kind = TokRightSet
		case '%':
			tok.kind = TokPercent
		case '|':
			tok.kind = TokPipe
		case ' ', ',', ';', ':', '!', '>':
			return s.next()
		default:
			tok.kind = TokVar
			tok.lexeme = "\\" + string(c)
		}
		return tok
	}

	for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
		s.pos++
	}
	word := string(s.src[start:s.pos])

	if spaces[word] {
		return s.next()
	}
	if k, ok := rawGroups[word]; ok {
		return s.rawGroup(word, k, start)
	}
	if k, ok := keywords[word]; ok {
		tok := token{kind: k, lexeme: word, pos: start}
		if k == TokBegin || k == TokEnd {
			tok.lexeme = strings.TrimSpace(s.braced(word))
		}
		return tok
	}
	return token{kind: TokVar, lexeme: word, pos: start}
}

// braced reads a {...} argument verbatim. Nested braces are not supported.
func (s *scanner) braced(word string) string {
	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != '{' {
		found := "end of input"
		if s.pos < len(s.src) {
			found = string(s.src[s.pos])
		}
		diag.Fail(diag.KindSyntax, diag.CodeExpected, s.pos, "{ after "+word, found)
	}
	s.pos++
	begin := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '}' {
		s.pos++
	}
	if s.pos >= len(s.src) {
		diag.Fail(diag.KindLexical, diag.CodeUnterminated, begin-1, word)
	}
	content := string(s.src[begin:s.pos])
	s.pos++
	return content
}

func (s *scanner) rawGroup(word string, kind Kind, start int) token {
	content := s.braced(word)
	switch kind {
	case TokText:
		if s.opts.IgnoreText {
			return s.next()
		}
		if !s.opts.KeepTextWhitespace {
			content = strings.Join(strings.Fields(content), " ")
		}
		return token{kind: TokText, lexeme: content, pos: start}
	case TokVar:
		return wordToken(strings.TrimSpace(content), start)
	default:
		return token{kind: kind, lexeme: strings.Join(strings.Fields(content), ""), pos: start}
	}
}
