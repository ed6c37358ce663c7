package aml

import "github.com/Amjad50/OS/kernel"

var errInvalidPkgLengthLead = &kernel.Error{Module: "acpi_aml", Message: "invalid package length lead byte: bits 4-5 must be zero when follow bytes are present"}

// pkgLength decodes an AML PkgLength field. The lead byte's top two bits
// give the number of follow bytes. With zero follow bytes, the length is
// the lead byte's low 6 bits. Otherwise bits 4-5 of the lead byte must be
// zero and the length is the low 4 bits OR'd with each follow byte shifted
// by 8*i+4. The result excludes the bytes consumed decoding the length
// itself, so it is exactly the size of the payload that follows.
func (p *Parser) pkgLength() (uint32, *kernel.Error) {
	lead, err := p.nextByte()
	if err != nil {
		return 0, err
	}

	follow := lead >> 6
	if follow == 0 {
		return uint32(lead&0x3F) - 1, nil
	}

	if (lead>>4)&0b11 != 0 {
		return 0, errInvalidPkgLengthLead
	}

	length := uint32(lead & 0x0F)
	for i := uint8(0); i < follow; i++ {
		b, err := p.nextByte()
		if err != nil {
			return 0, err
		}
		length |= uint32(b) << (8*uint32(i) + 4)
	}

	return length - uint32(follow) - 1, nil
}
