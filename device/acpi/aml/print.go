package aml

import (
	"fmt"
	"strings"
)

// String renders c as indented pseudo-AML source, the same textual form a
// disassembler would print, for logging and debugging.
func (c *Code) String() string {
	var b strings.Builder
	writeTerms(&b, c.Terms, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("    ")
	}
}

func writeTerms(b *strings.Builder, terms []Term, depth int) {
	for _, t := range terms {
		writeTerm(b, t, depth)
	}
}

func writeBlock(b *strings.Builder, header string, terms []Term, depth int) {
	indent(b, depth)
	b.WriteString(header)
	b.WriteString(" {\n")
	writeTerms(b, terms, depth+1)
	indent(b, depth)
	b.WriteString("}\n")
}

func writeTerm(b *strings.Builder, t Term, depth int) {
	switch v := t.(type) {
	case *ScopeTerm:
		writeBlock(b, fmt.Sprintf("Scope (%s)", v.Name), v.Terms, depth)
	case *DeviceTerm:
		writeBlock(b, fmt.Sprintf("Device (%s)", v.Name), v.Terms, depth)
	case *MethodTerm:
		writeBlock(b, fmt.Sprintf("Method (%s, %d args)", v.Name, v.ArgCount()), v.Terms, depth)
	case *ProcessorTerm:
		writeBlock(b, fmt.Sprintf("Processor (%s, id=%d, pblk=0x%x, len=%d)", v.Name, v.ProcessorID, v.PblkAddr, v.PblkLen), v.Terms, depth)
	case *PowerResourceTerm:
		writeBlock(b, fmt.Sprintf("PowerResource (%s, level=%d, order=%d)", v.Name, v.SystemLevel, v.ResourceOrder), v.Terms, depth)
	case *WhileTerm:
		writeBlock(b, fmt.Sprintf("While (%s)", termArgString(v.Predicate)), v.Terms, depth)
	case *IfTerm:
		writeBlock(b, fmt.Sprintf("If (%s)", termArgString(v.Predicate)), v.Terms, depth)
	case *ElseTerm:
		writeBlock(b, "Else", v.Terms, depth)

	case *RegionTerm:
		indent(b, depth)
		fmt.Fprintf(b, "OperationRegion (%s, %s, %s, %s)\n", v.Name, regionSpaceString(v.Space), termArgString(v.Offset), termArgString(v.Length))
	case *FieldTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Field (%s, flags=0x%x) { %s }\n", v.Name, v.Flags, fieldListString(v.Fields))
	case *IndexFieldTerm:
		indent(b, depth)
		fmt.Fprintf(b, "IndexField (%s, %s, flags=0x%x) { %s }\n", v.Name, v.IndexName, v.Flags, fieldListString(v.Fields))
	case *MutexTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Mutex (%s, %d)\n", v.Name, v.SyncLevel)
	case *EventTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Event (%s)\n", v.Name)
	case *NameTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Name (%s, %s)\n", v.Name, termArgString(v.Value))
	case *AliasTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Alias (%s, %s)\n", v.Source, v.Alias)
	case *CreateFieldTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s (%s, %s, %s)\n", v.Kind, termArgString(v.Buffer), termArgString(v.Offset), v.Name)
	case *StoreTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s = %s\n", targetString(v.Target), termArgString(v.Arg))
	case *RefOfTerm:
		indent(b, depth)
		fmt.Fprintf(b, "RefOf (%s)\n", targetString(v.Target))
	case *BinaryOpTerm:
		indent(b, depth)
		b.WriteString(displayBinaryOp(v.Op, v.Arg1, v.Arg2, v.Target, ""))
		b.WriteByte('\n')
	case *DivideTerm:
		indent(b, depth)
		remainder := ""
		if _, none := v.Remainder.(*NoTarget); v.Remainder != nil && !none {
			remainder = targetString(v.Remainder)
		}
		b.WriteString(displayBinaryOp("/", v.Dividend, v.Divisor, v.Quotient, remainder))
		b.WriteByte('\n')
	case *UnaryOpTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s = %s(%s)\n", targetString(v.Target), v.Op, termArgString(v.Arg))
	case *IncDecTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s%s\n", targetString(v.Target), v.Op)
	case *SizeOfTerm:
		indent(b, depth)
		fmt.Fprintf(b, "SizeOf (%s)\n", targetString(v.Target))
	case *NotifyTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Notify (%s, %s)\n", targetString(v.Target), termArgString(v.Value))
	case *IndexTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s = Index (%s, %s)\n", targetString(v.Target), termArgString(v.Arg1), termArgString(v.Arg2))
	case *LogicalBinaryTerm:
		indent(b, depth)
		fmt.Fprintf(b, "(%s %s %s)\n", termArgString(v.Arg1), v.Op, termArgString(v.Arg2))
	case *LNotTerm:
		indent(b, depth)
		fmt.Fprintf(b, "!%s\n", termArgString(v.Arg))
	case *DerefOfTerm:
		indent(b, depth)
		fmt.Fprintf(b, "DerefOf (%s)\n", termArgString(v.Arg))
	case *ConvertTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s = %s(%s)\n", targetString(v.Target), v.Op, termArgString(v.Arg))
	case *ToStringTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s = ToString(%s, %s)\n", targetString(v.Target), termArgString(v.Arg), termArgString(v.Length))
	case *CopyObjectTerm:
		indent(b, depth)
		fmt.Fprintf(b, "CopyObject (%s, %s)\n", termArgString(v.Source), targetString(v.Target))
	case *MidTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s = Mid(%s, %s, %s)\n", targetString(v.Target), termArgString(v.Source), termArgString(v.Index), termArgString(v.Length))
	case *ObjectTypeTerm:
		indent(b, depth)
		fmt.Fprintf(b, "ObjectType (%s)\n", targetString(v.Target))
	case *MatchTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Match (%s, %d, %s, %d, %s, %s)\n", termArgString(v.Source), v.Op1, termArgString(v.Operand1), v.Op2, termArgString(v.Operand2), termArgString(v.StartIndex))
	case *ContinueTerm:
		indent(b, depth)
		b.WriteString("Continue\n")
	case *NoopTerm:
		indent(b, depth)
		b.WriteString("Noop\n")
	case *ReturnTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Return (%s)\n", termArgString(v.Value))
	case *BreakTerm:
		indent(b, depth)
		b.WriteString("Break\n")
	case *CondRefOfTerm:
		indent(b, depth)
		fmt.Fprintf(b, "CondRefOf (%s, %s)\n", targetString(v.Source), targetString(v.Target))
	case *AcquireTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Acquire (%s, 0x%x)\n", targetString(v.Target), v.Timeout)
	case *SignalTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Signal (%s)\n", targetString(v.Target))
	case *WaitTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Wait (%s, %s)\n", targetString(v.Target), termArgString(v.Timeout))
	case *ResetTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Reset (%s)\n", targetString(v.Target))
	case *ReleaseTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Release (%s)\n", targetString(v.Target))
	case *StallTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Stall (%s)\n", termArgString(v.Duration))
	case *SleepTerm:
		indent(b, depth)
		fmt.Fprintf(b, "Sleep (%s)\n", termArgString(v.Duration))
	case *MethodCallTerm:
		indent(b, depth)
		fmt.Fprintf(b, "%s (%s)\n", v.Name, joinTermArgs(v.Args))

	default:
		indent(b, depth)
		fmt.Fprintf(b, "<unknown term %T>\n", t)
	}
}

// displayBinaryOp renders "Target = ( arg1 OP arg2 )" or, with no target,
// "( arg1 OP arg2 )". extra, when non-empty, is appended as
// ", Remainder=<extra>" for Divide.
func displayBinaryOp(op string, arg1, arg2 TermArg, target Target, extra string) string {
	inner := fmt.Sprintf("( %s %s %s )", termArgString(arg1), op, termArgString(arg2))
	var s string
	if _, isNone := target.(*NoTarget); target == nil || isNone {
		s = inner
	} else {
		s = fmt.Sprintf("%s = %s", targetString(target), inner)
	}
	if extra != "" {
		s += fmt.Sprintf(", Remainder=%s", extra)
	}
	return s
}

func termArgString(arg TermArg) string {
	switch v := arg.(type) {
	case *DataObject:
		return dataObjectString(v)
	case *LocalRef:
		return fmt.Sprintf("Local%d", v.Index)
	case *ArgRef:
		return fmt.Sprintf("Arg%d", v.Index)
	case *NameRef:
		return v.Name
	case *MethodCallArg:
		return fmt.Sprintf("%s (%s)", v.Name, joinTermArgs(v.Args))
	case *ExpressionArg:
		var b strings.Builder
		writeTerm(&b, v.Term, 0)
		return strings.TrimSuffix(b.String(), "\n")
	case nil:
		return ""
	default:
		return fmt.Sprintf("<unknown termarg %T>", arg)
	}
}

func dataObjectString(v *DataObject) string {
	switch v.kind {
	case dataConstZero:
		return "Zero"
	case dataConstOne:
		return "One"
	case dataConstOnes:
		return "Ones"
	case dataByteConst:
		return fmt.Sprintf("0x%02x", v.Value)
	case dataWordConst:
		return fmt.Sprintf("0x%04x", v.Value)
	case dataDWordConst:
		return fmt.Sprintf("0x%08x", v.Value)
	case dataQWordConst:
		return fmt.Sprintf("0x%016x", v.Value)
	default:
		return fmt.Sprintf("0x%x", v.Value)
	}
}

func joinTermArgs(args []TermArg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = termArgString(a)
	}
	return strings.Join(parts, ", ")
}

func targetString(t Target) string {
	switch v := t.(type) {
	case nil, *NoTarget:
		return "<none>"
	case *DebugTarget:
		return "Debug"
	case *ArgTarget:
		return fmt.Sprintf("Arg%d", v.Index)
	case *LocalTarget:
		return fmt.Sprintf("Local%d", v.Index)
	case *NameTarget:
		return v.Name
	case *DerefOfTarget:
		return fmt.Sprintf("DerefOf (%s)", termArgString(v.Arg))
	case *RefOfTarget:
		return fmt.Sprintf("RefOf (%s)", targetString(v.Target))
	case *IndexTarget:
		return fmt.Sprintf("Index (%s, %s) -> %s", termArgString(v.Arg1), termArgString(v.Arg2), targetString(v.Target))
	default:
		return fmt.Sprintf("<unknown target %T>", t)
	}
}

func fieldListString(fields []FieldElement) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.Named {
			parts[i] = fmt.Sprintf("%s:%d", f.Name, f.BitWidth)
		} else {
			parts[i] = fmt.Sprintf("reserved:%d", f.BitWidth)
		}
	}
	return strings.Join(parts, ", ")
}

func regionSpaceString(space uint8) string {
	switch space {
	case 0x00:
		return "SystemMemory"
	case 0x01:
		return "SystemIO"
	case 0x02:
		return "PCI_Config"
	case 0x03:
		return "EmbeddedControl"
	case 0x04:
		return "SMBus"
	case 0x05:
		return "SystemCMOS"
	case 0x06:
		return "PciBarTarget"
	case 0x07:
		return "IPMI"
	case 0x08:
		return "GeneralPurposeIO"
	case 0x09:
		return "GenericSerialBus"
	default:
		return fmt.Sprintf("0x%x", space)
	}
}
