package aml

import (
	"strings"

	"github.com/Amjad50/OS/kernel"
)

// parseNameSegment decodes a single 4-character name segment: A-Z/_ for the
// lead character, A-Z/_/0-9 for the following three. A lead byte of 0x00
// denotes the empty (null) segment used to terminate dual/multi name paths.
func (p *Parser) parseNameSegment() (string, *kernel.Error) {
	lead, err := p.nextByte()
	if err != nil {
		return "", err
	}
	if lead == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteByte(lead)

	for i := 0; i < 3; i++ {
		c, err := p.nextByte()
		if err != nil {
			return "", err
		}
		if !isNameChar(c) {
			panic("acpi_aml: invalid AML name segment character")
		}
		b.WriteByte(c)
	}

	return b.String(), nil
}

func isNameChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || c == '_' || (c >= '0' && c <= '9')
}

func isLeadNameChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || c == '_'
}

// tryParseName decodes a name reference per the AML NameString grammar: a
// null name, a single segment, a root-prefixed path, one or more
// parent-prefixes, a dual-name path ('.'), or a multi-name path ('/').
// It returns (name, false, nil) if the next byte cannot start a name.
func (p *Parser) tryParseName() (string, bool, *kernel.Error) {
	lead, err := p.peekByte()
	if err != nil {
		return "", false, err
	}

	switch {
	case lead == 0x00:
		_, _ = p.nextByte()
		return "", true, nil

	case isLeadNameChar(lead):
		seg, err := p.parseNameSegment()
		if err != nil {
			return "", false, err
		}
		return seg, true, nil

	case lead == '\\':
		_, _ = p.nextByte()
		name, err := p.parseName()
		if err != nil {
			return "", false, err
		}
		return "\\" + name, true, nil

	case lead == '^':
		var b strings.Builder
		for {
			peek, err := p.peekByte()
			if err != nil {
				return "", false, err
			}
			if peek != '^' {
				break
			}
			_, _ = p.nextByte()
			b.WriteByte('^')
		}
		name, err := p.parseName()
		if err != nil {
			return "", false, err
		}
		b.WriteString(name)
		return b.String(), true, nil

	case lead == '.':
		_, _ = p.nextByte()
		seg1, err := p.parseNameSegment()
		if err != nil {
			return "", false, err
		}
		seg2, err := p.parseNameSegment()
		if err != nil {
			return "", false, err
		}
		return seg1 + "." + seg2, true, nil

	case lead == '/':
		_, _ = p.nextByte()
		count, err := p.nextByte()
		if err != nil {
			return "", false, err
		}
		var b strings.Builder
		for i := uint8(0); i < count; i++ {
			seg, err := p.parseNameSegment()
			if err != nil {
				return "", false, err
			}
			b.WriteString(seg)
			if i != count-1 {
				b.WriteByte('.')
			}
		}
		return b.String(), true, nil

	default:
		return "", false, nil
	}
}

// parseName is like tryParseName but treats a byte that cannot start a name
// as a fatal error, for call sites where a name is mandatory.
func (p *Parser) parseName() (string, *kernel.Error) {
	name, ok, err := p.tryParseName()
	if err != nil {
		return "", err
	}
	if !ok {
		panic("acpi_aml: invalid AML name segment character")
	}
	return name, nil
}

// findMethod resolves name to a declared argument count. Dotted/prefixed
// names (length > 4) strip their leading '\\'/'^' scope prefix and look up
// the trailing 4-character segment in that scope's method table; shorter
// names are looked up in the flat, currently-visible method table.
func (p *Parser) findMethod(name string) (uint8, bool) {
	if len(name) > 4 {
		scopeName := strings.TrimLeft(name[:len(name)-5], "\\^")
		methodName := name[len(name)-4:]

		for scope, methods := range p.state.scopeMethods {
			if strings.TrimLeft(scope, "\\^") != scopeName {
				continue
			}
			if n, ok := methods[methodName]; ok {
				return n, true
			}
		}
		return 0, false
	}

	n, ok := p.state.methods[name]
	return n, ok
}

func (p *Parser) findName(name string) bool {
	_, ok := p.state.names[name]
	return ok
}

func (p *Parser) rememberName(name string) {
	p.state.names[name] = struct{}{}
}

func (p *Parser) rememberMethod(name string, argCount uint8) {
	p.state.methods[name] = argCount
	if p.scope == "" {
		return
	}
	if p.state.scopeMethods[p.scope] == nil {
		p.state.scopeMethods[p.scope] = make(map[string]uint8)
	}
	p.state.scopeMethods[p.scope][name] = argCount
}
