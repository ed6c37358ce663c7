package aml

import "github.com/Amjad50/OS/kernel"

// parseExtTerm decodes a 0x5B-prefixed extended-opcode term.
func (p *Parser) parseExtTerm() (Term, *kernel.Error) {
	ext, err := p.nextByte()
	if err != nil {
		return nil, err
	}

	switch ext {
	case extMutex:
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		flags, err := p.nextByte()
		if err != nil {
			return nil, err
		}
		p.rememberName(name)
		return &MutexTerm{Name: name, SyncLevel: flags & 0x0F}, nil

	case extEvent:
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		p.rememberName(name)
		return &EventTerm{Name: name}, nil

	case extCondRefOf:
		source, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &CondRefOfTerm{Source: source, Target: target}, nil

	case extStall:
		duration, err := p.parseTermArg()
		if err != nil {
			return nil, err
		}
		return &StallTerm{Duration: duration}, nil

	case extSleep:
		duration, err := p.parseTermArg()
		if err != nil {
			return nil, err
		}
		return &SleepTerm{Duration: duration}, nil

	case extAcquire:
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		lo, err := p.nextByte()
		if err != nil {
			return nil, err
		}
		hi, err := p.nextByte()
		if err != nil {
			return nil, err
		}
		return &AcquireTerm{Target: target, Timeout: uint16(hi)<<8 | uint16(lo)}, nil

	case extSignal:
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &SignalTerm{Target: target}, nil

	case extWait:
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		timeout, err := p.parseTermArg()
		if err != nil {
			return nil, err
		}
		return &WaitTerm{Target: target, Timeout: timeout}, nil

	case extReset:
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &ResetTerm{Target: target}, nil

	case extRelease:
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &ReleaseTerm{Target: target}, nil

	case extRegion:
		return p.parseRegion()

	case extField:
		return p.parseField()

	case extIndexField:
		return p.parseIndexField()

	case extDevice:
		return p.parseNamedScopeLike(func(name string, terms []Term) Term {
			return &DeviceTerm{Name: name, Terms: terms}
		})

	case extProcessor:
		return p.parseProcessor()

	case extPowerResource:
		return p.parsePowerResource()

	default:
		return nil, &kernel.Error{Module: "acpi_aml", Message: "unrecognized extended AML opcode"}
	}
}

func (p *Parser) parseRegion() (Term, *kernel.Error) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	space, err := p.nextByte()
	if err != nil {
		return nil, err
	}
	offset, err := p.parseTermArg()
	if err != nil {
		return nil, err
	}
	length, err := p.parseTermArg()
	if err != nil {
		return nil, err
	}
	p.rememberName(name)
	return &RegionTerm{Name: name, Space: space, Offset: offset, Length: length}, nil
}

func (p *Parser) parseField() (Term, *kernel.Error) {
	length, err := p.pkgLength()
	if err != nil {
		return nil, err
	}
	inner, err := p.innerParser(length, "")
	if err != nil {
		return nil, err
	}
	name, err := inner.parseName()
	if err != nil {
		return nil, err
	}
	flags, fields, err := inner.parseFieldsListAndFlags()
	if err != nil {
		return nil, err
	}
	return &FieldTerm{Name: name, Flags: flags, Fields: fields}, nil
}

func (p *Parser) parseIndexField() (Term, *kernel.Error) {
	length, err := p.pkgLength()
	if err != nil {
		return nil, err
	}
	inner, err := p.innerParser(length, "")
	if err != nil {
		return nil, err
	}
	name, err := inner.parseName()
	if err != nil {
		return nil, err
	}
	indexName, err := inner.parseName()
	if err != nil {
		return nil, err
	}
	flags, fields, err := inner.parseFieldsListAndFlags()
	if err != nil {
		return nil, err
	}
	return &IndexFieldTerm{Name: name, IndexName: indexName, Flags: flags, Fields: fields}, nil
}

func (p *Parser) parseProcessor() (Term, *kernel.Error) {
	length, err := p.pkgLength()
	if err != nil {
		return nil, err
	}
	inner, err := p.innerParser(length, "")
	if err != nil {
		return nil, err
	}
	name, err := inner.parseName()
	if err != nil {
		return nil, err
	}
	procID, err := inner.nextByte()
	if err != nil {
		return nil, err
	}
	pblkAddr, err := inner.readDWord()
	if err != nil {
		return nil, err
	}
	pblkLen, err := inner.nextByte()
	if err != nil {
		return nil, err
	}
	inner.scope = name
	terms, err := inner.parseTermList(len(inner.code))
	if err != nil {
		return nil, err
	}
	return &ProcessorTerm{Name: name, ProcessorID: procID, PblkAddr: pblkAddr, PblkLen: pblkLen, Terms: terms}, nil
}

func (p *Parser) parsePowerResource() (Term, *kernel.Error) {
	length, err := p.pkgLength()
	if err != nil {
		return nil, err
	}
	inner, err := p.innerParser(length, "")
	if err != nil {
		return nil, err
	}
	name, err := inner.parseName()
	if err != nil {
		return nil, err
	}
	systemLevel, err := inner.nextByte()
	if err != nil {
		return nil, err
	}
	resourceOrder, err := inner.readWord()
	if err != nil {
		return nil, err
	}
	inner.scope = name
	terms, err := inner.parseTermList(len(inner.code))
	if err != nil {
		return nil, err
	}
	return &PowerResourceTerm{Name: name, SystemLevel: systemLevel, ResourceOrder: resourceOrder, Terms: terms}, nil
}

func (p *Parser) readWord() (uint16, *kernel.Error) {
	lo, err := p.nextByte()
	if err != nil {
		return 0, err
	}
	hi, err := p.nextByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (p *Parser) readDWord() (uint32, *kernel.Error) {
	lo, err := p.readWord()
	if err != nil {
		return 0, err
	}
	hi, err := p.readWord()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

// field access-type/connection lead bytes within a FieldList.
const (
	fieldReservedLead  = 0x00
	fieldAccessLead    = 0x01
	fieldConnectionLead = 0x02
	fieldExtAccessLead = 0x03
)

// parseFieldsListAndFlags decodes a Field/IndexField body: one flags byte
// followed by a list of reserved and named spans. Access, connection and
// extended-access directives in the list are not supported: reaching one
// returns an error.
func (p *Parser) parseFieldsListAndFlags() (uint8, []FieldElement, *kernel.Error) {
	flags, err := p.nextByte()
	if err != nil {
		return 0, nil, err
	}

	var fields []FieldElement
	for p.pos < len(p.code) {
		lead, err := p.peekByte()
		if err != nil {
			return 0, nil, err
		}

		switch {
		case lead == fieldReservedLead:
			_, _ = p.nextByte()
			width, err := p.pkgLength()
			if err != nil {
				return 0, nil, err
			}
			fields = append(fields, FieldElement{Named: false, BitWidth: int(width)})

		case lead == fieldAccessLead:
			return 0, nil, &kernel.Error{Module: "acpi_aml", Message: "access field directives are not supported"}

		case lead == fieldConnectionLead:
			return 0, nil, &kernel.Error{Module: "acpi_aml", Message: "connection field directives are not supported"}

		case lead == fieldExtAccessLead:
			return 0, nil, &kernel.Error{Module: "acpi_aml", Message: "extended access field directives are not supported"}

		case isLeadNameChar(lead):
			name, err := p.parseNameSegment()
			if err != nil {
				return 0, nil, err
			}
			width, err := p.pkgLength()
			if err != nil {
				return 0, nil, err
			}
			p.rememberName(name)
			fields = append(fields, FieldElement{Named: true, Name: name, BitWidth: int(width)})

		default:
			return 0, nil, &kernel.Error{Module: "acpi_aml", Message: "unrecognized field list lead byte"}
		}
	}

	return flags, fields, nil
}
