package lang

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError identifies the offending token of a malformed command line.
type ParseError struct {
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error: %s", e.Msg)
	}
	return fmt.Sprintf("parse error at %q: %s", e.Token, e.Msg)
}

// commandSpec is one entry in the ordered keyword table. Abbreviations are
// matched case-insensitively in declared order across the whole table, and
// the first match wins: a one-letter abbreviation resolves to the earliest
// command that claims it. The table order is part of the user-visible
// grammar, do not reorder.
type commandSpec struct {
	names []string // abbreviations, canonical name last
	usage string
	brief string
	parse func(p *parser) (Command, error)
}

var commands = []commandSpec{
	{[]string{"b", "br", "break"}, "break <address>", "set a breakpoint",
		func(p *parser) (Command, error) {
			a, err := p.address()
			if err != nil {
				return nil, err
			}
			return Break{Address: a}, nil
		}},
	{[]string{"c", "cont", "continue"}, "continue", "resume execution",
		func(p *parser) (Command, error) { return Continue{}, nil }},
	{[]string{"d", "del", "delete"}, "delete <id>", "remove a breakpoint",
		func(p *parser) (Command, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return Delete{ID: id}, nil
		}},
	{[]string{"dis", "disable"}, "disable <id>", "deactivate a breakpoint",
		func(p *parser) (Command, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return Disable{ID: id}, nil
		}},
	{[]string{"e", "en", "enable"}, "enable <id>", "reactivate a breakpoint",
		func(p *parser) (Command, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return Enable{ID: id}, nil
		}},
	{[]string{"f", "freq", "frequency"}, "freq <dot|machine|instruction|scanline|frame>", "set the step frequency",
		func(p *parser) (Command, error) {
			tok, ok := p.next()
			if !ok {
				return nil, &ParseError{Msg: "freq requires a frequency"}
			}
			f, ok := parseFrequency(tok.text)
			if !ok {
				return nil, &ParseError{Token: tok.text, Msg: "unknown frequency"}
			}
			return Freq{Frequency: f}, nil
		}},
	{[]string{"g", "goto"}, "goto <address>", "force the program counter",
		func(p *parser) (Command, error) {
			a, err := p.address()
			if err != nil {
				return nil, err
			}
			return Goto{Address: a}, nil
		}},
	{[]string{"h", "help", "?"}, "help", "print this summary",
		func(p *parser) (Command, error) { return Help{}, nil }},
	{[]string{"ig", "ignore"}, "ignore <id> <count>", "skip the next count hits of a breakpoint",
		func(p *parser) (Command, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			count, err := p.count()
			if err != nil {
				return nil, err
			}
			return Ignore{ID: id, Count: count}, nil
		}},
	{[]string{"i", "info"}, "info [break]", "report session state",
		func(p *parser) (Command, error) {
			tok, ok := p.next()
			if !ok {
				return Info{}, nil
			}
			for _, name := range []string{"b", "br", "break"} {
				if strings.EqualFold(tok.text, name) {
					return Info{Break: true}, nil
				}
			}
			return nil, &ParseError{Token: tok.text, Msg: "expected break"}
		}},
	{[]string{"j", "jump"}, "jump <address>", "force the program counter",
		func(p *parser) (Command, error) {
			a, err := p.address()
			if err != nil {
				return nil, err
			}
			return Jump{Address: a}, nil
		}},
	{[]string{"l", "li", "list"}, "list", "disassemble around the program counter",
		func(p *parser) (Command, error) { return List{}, nil }},
	{[]string{"ld", "load"}, "load <location>...", "display register/IO values",
		func(p *parser) (Command, error) {
			var locs []Location
			for {
				tok, ok := p.next()
				if !ok {
					break
				}
				loc, ok := parseLocation(tok.text)
				if !ok {
					return nil, &ParseError{Token: tok.text, Msg: "unknown location"}
				}
				locs = append(locs, loc)
			}
			if len(locs) == 0 {
				return nil, &ParseError{Msg: "load requires at least one location"}
			}
			return Load{Locations: locs}, nil
		}},
	{[]string{"lo", "log"}, "log [filter]", "set or report log filters",
		func(p *parser) (Command, error) {
			tok, ok := p.next()
			if !ok {
				return Log{}, nil
			}
			return Log{Set: true, Filter: tok.text}, nil
		}},
	{[]string{"q", "quit", "exit"}, "quit", "end the session",
		func(p *parser) (Command, error) { return Quit{}, nil }},
	{[]string{"r", "rd", "read"}, "read <address|range>", "dump memory",
		func(p *parser) (Command, error) {
			r, err := p.addressRange()
			if err != nil {
				return nil, err
			}
			return Read{Range: r}, nil
		}},
	{[]string{"res", "reset"}, "reset", "power-cycle the emulated hardware",
		func(p *parser) (Command, error) { return Reset{}, nil }},
	{[]string{"s", "step"}, "step [count] [frequency]", "advance one or more units",
		func(p *parser) (Command, error) {
			cmd := Step{Count: 1}
			tok, ok := p.next()
			if !ok {
				return cmd, nil
			}
			if count, err := parseUint(tok.text, 32); err == nil {
				cmd.Count = uint32(count)
				tok, ok = p.next()
				if !ok {
					return cmd, nil
				}
			}
			f, isFreq := parseFrequency(tok.text)
			if !isFreq {
				return nil, &ParseError{Token: tok.text, Msg: "expected count or frequency"}
			}
			cmd.Frequency, cmd.FreqSet = f, true
			return cmd, nil
		}},
	{[]string{"sx", "serial"}, "serial [peek | <byte>... | <string>]", "access the serial buffer",
		parseSerial},
	{[]string{"sr", "st", "store"}, "store <location> <value>", "write a register/IO value",
		func(p *parser) (Command, error) {
			tok, ok := p.next()
			if !ok {
				return nil, &ParseError{Msg: "store requires a location"}
			}
			loc, ok := parseLocation(tok.text)
			if !ok {
				return nil, &ParseError{Token: tok.text, Msg: "unknown location"}
			}
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			return Store{Location: loc, Value: v}, nil
		}},
	{[]string{"w", "wr", "write"}, "write <address|range> <value>", "store a byte over memory",
		func(p *parser) (Command, error) {
			r, err := p.addressRange()
			if err != nil {
				return nil, err
			}
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			return Write{Range: r, Value: v}, nil
		}},
}

func parseSerial(p *parser) (Command, error) {
	tok, ok := p.next()
	if !ok {
		return Serial{}, nil
	}
	if !tok.quoted {
		for _, name := range []string{"p", "peek"} {
			if strings.EqualFold(tok.text, name) {
				return Serial{Peek: true}, nil
			}
		}
	}
	if tok.quoted {
		return Serial{Payload: []byte(tok.text)}, nil
	}
	var payload []byte
	for {
		v, err := literalUint(tok.text, 8)
		if err != nil {
			return nil, err
		}
		payload = append(payload, byte(v))
		tok, ok = p.next()
		if !ok {
			break
		}
	}
	return Serial{Payload: payload}, nil
}

// Parse converts a raw input line into the commands it holds. Statements are
// separated by ';' or newlines; blank statements are skipped.
func Parse(input string) ([]Command, error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	var out []Command
	stmt := make([]token, 0, 8)

	flush := func() error {
		if len(stmt) == 0 {
			return nil
		}
		cmd, err := parseStatement(stmt)
		if err != nil {
			return err
		}
		out = append(out, cmd)
		stmt = stmt[:0]
		return nil
	}

	for _, tok := range toks {
		if tok.sep {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		stmt = append(stmt, tok)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseStatement(toks []token) (Command, error) {
	p := &parser{toks: toks}
	head, _ := p.next()

	var spec *commandSpec
	if !head.quoted {
		for i := range commands {
			for _, name := range commands[i].names {
				if strings.EqualFold(head.text, name) {
					spec = &commands[i]
					break
				}
			}
			if spec != nil {
				break
			}
		}
	}
	if spec == nil {
		return nil, &ParseError{Token: head.text, Msg: "unknown command"}
	}

	cmd, err := spec.parse(p)
	if err != nil {
		return nil, err
	}
	if tok, ok := p.next(); ok {
		return nil, &ParseError{Token: tok.text, Msg: "unexpected token"}
	}
	return cmd, nil
}

// HelpText returns the command summary shown by the help command.
func HelpText() string {
	var b strings.Builder
	b.WriteString("commands (abbreviations in parentheses):\n")
	for _, spec := range commands {
		abbrevs := strings.Join(spec.names[:len(spec.names)-1], ", ")
		fmt.Fprintf(&b, "  %-44s %s (%s)\n", spec.usage, spec.brief, abbrevs)
	}
	return b.String()
}

type token struct {
	text   string
	quoted bool
	sep    bool
}

// tokenize splits an input line into whitespace-separated words, quoted
// strings and statement separators. Quotes do not nest and there are no
// escape sequences.
func tokenize(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == ';' || r == '\n':
			toks = append(toks, token{sep: true})
			i++
		case r == ' ' || r == '\t' || r == '\r':
			i++
		case r == '"' || r == '\'':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j == len(runes) {
				return nil, &ParseError{Token: string(runes[i:]), Msg: "unterminated string"}
			}
			toks = append(toks, token{text: string(runes[i+1 : j]), quoted: true})
			i = j + 1
		default:
			j := i
			for j < len(runes) && !strings.ContainsRune(" \t\r\n;\"'", runes[j]) {
				j++
			}
			toks = append(toks, token{text: string(runes[i:j])})
			i = j
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) next() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	tok := p.toks[p.pos]
	p.pos++
	return tok, true
}

func (p *parser) address() (uint16, error) {
	tok, ok := p.next()
	if !ok {
		return 0, &ParseError{Msg: "missing address"}
	}
	v, err := literalUint(tok.text, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func (p *parser) addressRange() (Range, error) {
	tok, ok := p.next()
	if !ok {
		return Range{}, &ParseError{Msg: "missing address or range"}
	}
	r, err := parseRange(tok.text)
	if err != nil {
		return Range{}, err
	}
	return r, nil
}

func (p *parser) id() (int, error) {
	tok, ok := p.next()
	if !ok {
		return 0, &ParseError{Msg: "missing breakpoint id"}
	}
	v, err := literalUint(tok.text, 31)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (p *parser) count() (uint32, error) {
	tok, ok := p.next()
	if !ok {
		return 0, &ParseError{Msg: "missing count"}
	}
	v, err := literalUint(tok.text, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (p *parser) value() (uint64, error) {
	tok, ok := p.next()
	if !ok {
		return 0, &ParseError{Msg: "missing value"}
	}
	return literalUint(tok.text, 64)
}

// parseUint parses an unsigned magnitude. The radix is selected by a
// 0b/0o/0x prefix, defaulting to decimal: unlike strconv's base-0 mode, a
// bare leading zero does not mean octal.
func parseUint(tok string, bits int) (uint64, error) {
	s := tok
	base := 10
	if len(s) >= 2 && s[0] == '0' {
		switch s[1] {
		case 'b', 'B', 'o', 'O', 'x', 'X':
			base = 0
		}
	}
	v, err := strconv.ParseUint(s, base, bits)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// literalUint is parseUint with strconv errors folded into a ParseError.
func literalUint(tok string, bits int) (uint64, error) {
	v, err := parseUint(tok, bits)
	if err != nil {
		return 0, &ParseError{Token: tok, Msg: "malformed or out-of-range number"}
	}
	return v, nil
}
