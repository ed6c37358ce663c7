package aml

import "github.com/Amjad50/OS/kernel"

// maxSpeculativeArgs bounds predictPossibleArgs: no AML method takes more
// than 7 arguments, so speculation stops after 7 successfully parsed args.
const maxSpeculativeArgs = 7

// parseTermArg decodes one TermArg in a position where a bare expression
// opcode (Buffer/Package/binary-op/...) must be wrapped as an ExpressionArg,
// matching parseTermArgGeneral's general rule.
func (p *Parser) parseTermArg() (TermArg, *kernel.Error) {
	return p.parseTermArgGeneral()
}

// parseTermArgGeneral decodes a single TermArg: an inline data literal, a
// Local/Arg reference, a bare name (variable reference or method call,
// disambiguated via findMethod/predictPossibleArgs), or a nested expression
// term evaluated for its value.
func (p *Parser) parseTermArgGeneral() (TermArg, *kernel.Error) {
	lead, err := p.peekByte()
	if err != nil {
		return nil, err
	}

	switch {
	case lead == opZero:
		_, _ = p.nextByte()
		return &DataObject{kind: dataConstZero, Value: 0}, nil
	case lead == opOne:
		_, _ = p.nextByte()
		return &DataObject{kind: dataConstOne, Value: 1}, nil
	case lead == opBytePrefix:
		_, _ = p.nextByte()
		b, err := p.nextByte()
		if err != nil {
			return nil, err
		}
		return &DataObject{kind: dataByteConst, Value: uint64(b)}, nil
	case lead == opWordPrefix:
		_, _ = p.nextByte()
		w, err := p.readWord()
		if err != nil {
			return nil, err
		}
		return &DataObject{kind: dataWordConst, Value: uint64(w)}, nil
	case lead == opDWordPrefix:
		_, _ = p.nextByte()
		d, err := p.readDWord()
		if err != nil {
			return nil, err
		}
		return &DataObject{kind: dataDWordConst, Value: uint64(d)}, nil
	case lead == opQWordPrefix:
		_, _ = p.nextByte()
		lo, err := p.readDWord()
		if err != nil {
			return nil, err
		}
		hi, err := p.readDWord()
		if err != nil {
			return nil, err
		}
		return &DataObject{kind: dataQWordConst, Value: uint64(hi)<<32 | uint64(lo)}, nil
	case lead == opStringPrefix:
		_, _ = p.nextByte()
		s, err := p.readCString()
		if err != nil {
			return nil, err
		}
		return &ExpressionArg{Term: &StringTerm{Value: s}}, nil
	case lead == 0xFF: // OnesOp
		_, _ = p.nextByte()
		return &DataObject{kind: dataConstOnes, Value: ^uint64(0)}, nil

	case isLocalOp(lead):
		_, _ = p.nextByte()
		return &LocalRef{Index: lead - opLocal0}, nil
	case isArgOp(lead):
		_, _ = p.nextByte()
		return &ArgRef{Index: lead - opArg0}, nil

	case lead == opBuffer:
		_, _ = p.nextByte()
		return p.parseBuffer()
	case lead == opPackage:
		_, _ = p.nextByte()
		return p.parsePackage()
	case lead == opVarPackage:
		_, _ = p.nextByte()
		return p.parseVarPackage()

	case isLeadNameChar(lead) || lead == '\\' || lead == '^' || lead == 0x00:
		return p.parseNameOrMethodCallArg()

	default:
		// Any other byte is itself an expression opcode (binary op, LNot,
		// SizeOf, ...); parse it as a term and wrap it for value position.
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &ExpressionArg{Term: term}, nil
	}
}

func (p *Parser) readCString() (string, *kernel.Error) {
	var b []byte
	for {
		c, err := p.nextByte()
		if err != nil {
			return "", err
		}
		if c == 0 {
			return string(b), nil
		}
		b = append(b, c)
	}
}

func (p *Parser) parseBuffer() (TermArg, *kernel.Error) {
	length, err := p.pkgLength()
	if err != nil {
		return nil, err
	}
	inner, err := p.innerParser(length, "")
	if err != nil {
		return nil, err
	}
	size, err := inner.parseTermArg()
	if err != nil {
		return nil, err
	}
	data := inner.code[inner.pos:]
	return &ExpressionArg{Term: &BufferTerm{Size: size, Data: data}}, nil
}

func (p *Parser) parsePackage() (TermArg, *kernel.Error) {
	length, err := p.pkgLength()
	if err != nil {
		return nil, err
	}
	inner, err := p.innerParser(length, "")
	if err != nil {
		return nil, err
	}
	count, err := inner.nextByte()
	if err != nil {
		return nil, err
	}
	var elems []TermArg
	for inner.pos < len(inner.code) {
		e, err := inner.parseTermArg()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return &ExpressionArg{Term: &PackageTerm{Count: count, Elements: elems}}, nil
}

func (p *Parser) parseVarPackage() (TermArg, *kernel.Error) {
	length, err := p.pkgLength()
	if err != nil {
		return nil, err
	}
	inner, err := p.innerParser(length, "")
	if err != nil {
		return nil, err
	}
	count, err := inner.parseTermArg()
	if err != nil {
		return nil, err
	}
	var elems []TermArg
	for inner.pos < len(inner.code) {
		e, err := inner.parseTermArg()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return &ExpressionArg{Term: &VarPackageTerm{Count: count, Elements: elems}}, nil
}

// parseNameOrMethodCallArg decodes a name appearing in TermArg position: a
// known method is invoked with its declared argument count; a known
// (non-method) name is a bare variable reference; an unknown name has its
// arity guessed by predictPossibleArgs.
func (p *Parser) parseNameOrMethodCallArg() (TermArg, *kernel.Error) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	if argCount, ok := p.findMethod(name); ok {
		args, err := p.parseNArgs(int(argCount))
		if err != nil {
			return nil, err
		}
		return &MethodCallArg{Name: name, Args: args}, nil
	}

	if p.findName(name) {
		return &NameRef{Name: name}, nil
	}

	argCount := p.predictPossibleArgs()
	args, err := p.parseNArgs(argCount)
	if err != nil {
		return nil, err
	}
	if argCount == 0 {
		return &NameRef{Name: name}, nil
	}
	return &MethodCallArg{Name: name, Args: args}, nil
}

// parseNameOrMethodCallTerm is parseNameOrMethodCallArg's top-level-Term
// counterpart, used when a bare name opens a term list entry (e.g. a
// discarded method call used for its side effects).
func (p *Parser) parseNameOrMethodCallTerm() (Term, *kernel.Error) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	argCount, known := p.findMethod(name)
	if !known && !p.findName(name) {
		argCount = uint8(p.predictPossibleArgs())
	}

	args, err := p.parseNArgs(int(argCount))
	if err != nil {
		return nil, err
	}
	return &MethodCallTerm{Name: name, Args: args}, nil
}

func (p *Parser) parseNArgs(n int) ([]TermArg, *kernel.Error) {
	args := make([]TermArg, 0, n)
	for i := 0; i < n; i++ {
		arg, err := p.parseTermArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// predictPossibleArgs is used when a bare name is neither a known method nor
// a known variable: it speculatively parses up to maxSpeculativeArgs
// TermArgs on a cloned parser, stopping as soon as it hits something that
// cannot be a further argument (a bare unrecognized name, a Store/Notify
// term, or a parse error), and returns how many consecutive speculative
// parses succeeded. That count becomes the name's guessed argument count.
func (p *Parser) predictPossibleArgs() int {
	probe := p.clone()

	count := 0
	for count < maxSpeculativeArgs {
		if probe.pos >= len(probe.code) {
			break
		}

		lead, err := probe.peekByte()
		if err != nil {
			break
		}
		if lead == opStore || lead == opNotify {
			break
		}

		arg, err := probe.parseTermArgGeneral()
		if err != nil {
			break
		}
		// A bare name that resolved to a plain variable reference (rather
		// than being consumed as part of a nested method call) marks the
		// start of the next statement, not a further argument to the name
		// being probed.
		if _, ok := arg.(*NameRef); ok {
			break
		}
		count++
	}

	return count
}
