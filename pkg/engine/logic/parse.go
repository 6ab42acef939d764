package logic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"wwrando/pkg/engine/world"
)

// Generic key names rewritten to a dungeon's own keys inside that dungeon
const (
	GenericSmallKey = "Small Key"
	GenericBigKey   = "Big Key"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokOpen
	tokClose
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		c, size := utf8.DecodeRuneInString(expr[i:])
		switch {
		case c == utf8.RuneError && size == 1:
			return nil, &ParseError{Expr: expr, Pos: i, Err: ErrUnknownSymbol, Detail: fmt.Sprintf("invalid UTF-8 byte %#x", expr[i])}
		case unicode.IsSpace(c):
			i += size
		case c == '(':
			toks = append(toks, token{tokOpen, "(", i})
			i += size
		case c == ')':
			toks = append(toks, token{tokClose, ")", i})
			i += size
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i += size
		case isIdentRune(c):
			start := i
			digits := true
			for i < len(expr) {
				r, n := utf8.DecodeRuneInString(expr[i:])
				if !isIdentRune(r) || (r == utf8.RuneError && n == 1) {
					break
				}
				digits = digits && unicode.IsDigit(r)
				i += n
			}
			kind := tokIdent
			if digits {
				kind = tokNumber
			}
			toks = append(toks, token{kind, expr[start:i], start})
		default:
			return nil, &ParseError{Expr: expr, Pos: i, Err: ErrUnknownSymbol, Detail: fmt.Sprintf("unexpected %q", c)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(expr)})
	return toks, nil
}

func isIdentRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '\'' || c == '-' || c == '.' || c == ':'
}

// Parser turns expression strings into requirements resolved against a world.
type Parser struct {
	World *world.World

	// Dungeon, when set, resolves the generic key names to this dungeon's keys
	Dungeon *world.Dungeon
}

// Parse parses expr against the world's tables
func Parse(w *world.World, expr string) (world.Requirement, error) {
	p := &Parser{World: w}
	return p.Parse(expr)
}

// Parse parses a single expression
func (p *Parser) Parse(expr string) (world.Requirement, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return world.Requirement{}, err
	}
	if len(toks) == 1 {
		return world.Requirement{}, &ParseError{Expr: expr, Err: ErrEmpty}
	}
	st := &parseState{p: p, expr: expr, toks: toks}
	req, err := st.parseExpr()
	if err != nil {
		return world.Requirement{}, err
	}
	if t := st.peek(); t.kind != tokEOF {
		if t.kind == tokClose {
			return world.Requirement{}, st.errAt(t, ErrUnbalanced, "unexpected )")
		}
		return world.Requirement{}, st.errAt(t, ErrUnknownSymbol, fmt.Sprintf("unexpected %q", t.text))
	}
	return req, nil
}

type parseState struct {
	p    *Parser
	expr string
	toks []token
	i    int
}

func (s *parseState) peek() token {
	return s.toks[s.i]
}

func (s *parseState) next() token {
	t := s.toks[s.i]
	if t.kind != tokEOF {
		s.i++
	}
	return t
}

func (s *parseState) errAt(t token, err error, detail string) error {
	return &ParseError{Expr: s.expr, Pos: t.pos, Err: err, Detail: detail}
}

func (s *parseState) parseExpr() (world.Requirement, error) {
	first, err := s.parseTerm()
	if err != nil {
		return world.Requirement{}, err
	}
	args := []world.Requirement{first}
	op := ""
	for {
		t := s.peek()
		if t.kind != tokIdent || (t.text != "and" && t.text != "or") {
			break
		}
		if op != "" && op != t.text {
			return world.Requirement{}, s.errAt(t, ErrMixedOperators, "use parentheses")
		}
		op = t.text
		s.next()
		arg, err := s.parseTerm()
		if err != nil {
			return world.Requirement{}, err
		}
		args = append(args, arg)
	}
	switch op {
	case "and":
		return world.AllOf(args...), nil
	case "or":
		return world.AnyOf(args...), nil
	default:
		return first, nil
	}
}

func (s *parseState) parseTerm() (world.Requirement, error) {
	t := s.next()
	switch t.kind {
	case tokOpen:
		if s.peek().kind == tokClose {
			return world.Requirement{}, s.errAt(s.peek(), ErrEmpty, "empty parentheses")
		}
		inner, err := s.parseExpr()
		if err != nil {
			return world.Requirement{}, err
		}
		if c := s.next(); c.kind != tokClose {
			return world.Requirement{}, s.errAt(c, ErrUnbalanced, "missing )")
		}
		return inner, nil
	case tokIdent:
		switch t.text {
		case "not":
			arg, err := s.parseTerm()
			if err != nil {
				return world.Requirement{}, err
			}
			return world.NotReq(arg), nil
		case "count":
			return s.parseCount(t)
		case "can_access":
			return s.parseAccess(t)
		case "setting":
			return s.parseSetting(t)
		case "and", "or":
			return world.Requirement{}, s.errAt(t, ErrArity, fmt.Sprintf("%q needs an operand on both sides", t.text))
		}
		return s.resolve(t)
	case tokEOF:
		return world.Requirement{}, s.errAt(t, ErrEmpty, "expected an operand")
	case tokClose:
		return world.Requirement{}, s.errAt(t, ErrUnbalanced, "unexpected )")
	default:
		return world.Requirement{}, s.errAt(t, ErrUnknownSymbol, fmt.Sprintf("unexpected %q", t.text))
	}
}

// callArgs reads "( arg {, arg} )" and returns the raw argument tokens
func (s *parseState) callArgs(fn token) ([]token, error) {
	if t := s.next(); t.kind != tokOpen {
		return nil, s.errAt(t, ErrArity, fn.text+" expects (")
	}
	var args []token
	for {
		t := s.next()
		switch t.kind {
		case tokIdent, tokNumber:
			args = append(args, t)
		case tokClose:
			if len(args) == 0 {
				return nil, s.errAt(t, ErrArity, fn.text+" expects arguments")
			}
			return nil, s.errAt(t, ErrArity, "trailing comma")
		case tokEOF:
			return nil, s.errAt(t, ErrUnbalanced, "missing )")
		default:
			return nil, s.errAt(t, ErrArity, fmt.Sprintf("unexpected %q in %s", t.text, fn.text))
		}
		switch sep := s.next(); sep.kind {
		case tokComma:
			continue
		case tokClose:
			return args, nil
		case tokEOF:
			return nil, s.errAt(sep, ErrUnbalanced, "missing )")
		default:
			return nil, s.errAt(sep, ErrArity, fmt.Sprintf("unexpected %q in %s", sep.text, fn.text))
		}
	}
}

func (s *parseState) parseCount(fn token) (world.Requirement, error) {
	args, err := s.callArgs(fn)
	if err != nil {
		return world.Requirement{}, err
	}
	if len(args) != 2 {
		return world.Requirement{}, s.errAt(fn, ErrArity, fmt.Sprintf("count takes 2 arguments, got %d", len(args)))
	}
	if args[0].kind != tokNumber {
		return world.Requirement{}, s.errAt(args[0], ErrArity, "count expects a number first")
	}
	n, err := strconv.Atoi(args[0].text)
	if err != nil {
		return world.Requirement{}, s.errAt(args[0], ErrArity, err.Error())
	}
	id, err := s.item(args[1])
	if err != nil {
		return world.Requirement{}, err
	}
	return world.CountOf(n, id), nil
}

func (s *parseState) parseAccess(fn token) (world.Requirement, error) {
	args, err := s.callArgs(fn)
	if err != nil {
		return world.Requirement{}, err
	}
	if len(args) != 1 {
		return world.Requirement{}, s.errAt(fn, ErrArity, fmt.Sprintf("can_access takes 1 argument, got %d", len(args)))
	}
	name := symbolName(args[0].text)
	loc, ok := s.p.World.LocationByName(name)
	if !ok {
		return world.Requirement{}, s.errAt(args[0], ErrUnknownSymbol, fmt.Sprintf("location %q", name))
	}
	return world.Access(loc.ID), nil
}

func (s *parseState) parseSetting(fn token) (world.Requirement, error) {
	args, err := s.callArgs(fn)
	if err != nil {
		return world.Requirement{}, err
	}
	if len(args) != 1 {
		return world.Requirement{}, s.errAt(fn, ErrArity, fmt.Sprintf("setting takes 1 argument, got %d", len(args)))
	}
	id, ok := s.p.World.SettingByName(args[0].text)
	if !ok {
		return world.Requirement{}, s.errAt(args[0], ErrUnknownSymbol, fmt.Sprintf("setting %q", args[0].text))
	}
	return world.Flag(id), nil
}

func (s *parseState) item(t token) (world.ItemID, error) {
	name := symbolName(t.text)
	if d := s.p.Dungeon; d != nil {
		switch {
		case name == GenericSmallKey && d.SmallKey != world.None:
			return d.SmallKey, nil
		case name == GenericBigKey && d.BigKey != world.None:
			return d.BigKey, nil
		}
	}
	id, ok := s.p.World.ItemByName(name)
	if !ok {
		return world.None, s.errAt(t, ErrUnknownSymbol, fmt.Sprintf("item %q", name))
	}
	return id, nil
}

func (s *parseState) resolve(t token) (world.Requirement, error) {
	name := symbolName(t.text)
	switch name {
	case "Nothing":
		return world.Free(), nil
	case "Impossible":
		return world.Never(), nil
	}
	if idx, ok := s.p.World.MacroByName(name); ok {
		return world.MacroRef(idx), nil
	}
	id, err := s.item(t)
	if err != nil {
		return world.Requirement{}, err
	}
	return world.Has(id), nil
}

// symbolName converts an expression identifier to a table name
func symbolName(ident string) string {
	return strings.ReplaceAll(ident, "_", " ")
}

// identifier converts a table name to an expression identifier
func identifier(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
