package aml

import "github.com/Amjad50/OS/kernel"

// parseTarget decodes a store/result destination: no target (0x00), the
// Debug pseudo-object (0x5B 0x31), a Local/Arg reference, a named object, or
// a nested Index/RefOf/DerefOf expression reinterpreted as a target.
func (p *Parser) parseTarget() (Target, *kernel.Error) {
	lead, err := p.peekByte()
	if err != nil {
		return nil, err
	}

	switch {
	case lead == 0x00:
		_, _ = p.nextByte()
		return &NoTarget{}, nil

	case lead == opExtPrefix:
		probe := p.clone()
		_, _ = probe.nextByte()
		next, perr := probe.peekByte()
		if perr == nil && next == 0x31 {
			_, _ = p.nextByte()
			_, _ = p.nextByte()
			return &DebugTarget{}, nil
		}
		term, err := p.parseExtTerm()
		if err != nil {
			return nil, err
		}
		return &RefOfTarget{Target: targetOfTerm(term)}, nil

	case isLocalOp(lead):
		_, _ = p.nextByte()
		return &LocalTarget{Index: lead - opLocal0}, nil

	case isArgOp(lead):
		_, _ = p.nextByte()
		return &ArgTarget{Index: lead - opArg0}, nil

	case isLeadNameChar(lead) || lead == '\\' || lead == '^':
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		return &NameTarget{Name: name}, nil

	case lead == opIndex:
		_, _ = p.nextByte()
		arg1, err := p.parseTermArg()
		if err != nil {
			return nil, err
		}
		arg2, err := p.parseTermArg()
		if err != nil {
			return nil, err
		}
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &IndexTarget{Arg1: arg1, Arg2: arg2, Target: target}, nil

	case lead == opRefOf:
		_, _ = p.nextByte()
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &RefOfTarget{Target: target}, nil

	case lead == opDerefOf:
		_, _ = p.nextByte()
		arg, err := p.parseTermArg()
		if err != nil {
			return nil, err
		}
		return &DerefOfTarget{Arg: arg}, nil

	default:
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &RefOfTarget{Target: targetOfTerm(term)}, nil
	}
}

// targetOfTerm wraps a Term parsed in target position into a Target: a
// Region, Field, Device or Mutex declaration becomes a NameTarget for its
// name, and any other term becomes NoTarget.
func targetOfTerm(t Term) Target {
	switch v := t.(type) {
	case *RegionTerm:
		return &NameTarget{Name: v.Name}
	case *FieldTerm:
		return &NameTarget{Name: v.Name}
	case *DeviceTerm:
		return &NameTarget{Name: v.Name}
	case *MutexTerm:
		return &NameTarget{Name: v.Name}
	}
	return &NoTarget{}
}
