package aml

import "testing"

func nameBytes(s string) []byte {
	if len(s) != 4 {
		panic("test name segments must be exactly 4 characters")
	}
	return []byte(s)
}

// TestMethodArityResolvesBareNameToMethodCall covers the scenario where,
// after Method(FOO_,1){...} has been declared, a later bare reference to
// FOO_ followed by a Zero TermArg parses as a one-argument method call
// rather than a plain variable reference.
func TestMethodArityResolvesBareNameToMethodCall(t *testing.T) {
	var code []byte
	code = append(code, opMethod, 0x06)
	code = append(code, nameBytes("FOO_")...)
	code = append(code, 0x01) // MethodFlags: 1 argument

	code = append(code, opName)
	code = append(code, nameBytes("DUM_")...)
	code = append(code, nameBytes("FOO_")...)
	code = append(code, opZero)

	parsed, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(parsed.Terms) != 2 {
		t.Fatalf("expected 2 top-level terms, got %d", len(parsed.Terms))
	}

	nameTerm, ok := parsed.Terms[1].(*NameTerm)
	if !ok {
		t.Fatalf("second term is %T, want *NameTerm", parsed.Terms[1])
	}

	call, ok := nameTerm.Value.(*MethodCallArg)
	if !ok {
		t.Fatalf("Name value is %T, want *MethodCallArg", nameTerm.Value)
	}
	if call.Name != "FOO_" {
		t.Fatalf("method call name = %q, want FOO_", call.Name)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 argument, got %d", len(call.Args))
	}
	if _, ok := call.Args[0].(*DataObject); !ok {
		t.Fatalf("argument is %T, want *DataObject", call.Args[0])
	}
}

// TestKnownNameResolvesToBareReference covers the scenario where, after
// Name(FOO_,Zero) has been declared, a later bare reference to FOO_ parses
// as a plain variable reference rather than a method call.
func TestKnownNameResolvesToBareReference(t *testing.T) {
	var code []byte
	code = append(code, opName)
	code = append(code, nameBytes("FOO_")...)
	code = append(code, opZero)

	code = append(code, opName)
	code = append(code, nameBytes("DUM_")...)
	code = append(code, nameBytes("FOO_")...)

	parsed, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(parsed.Terms) != 2 {
		t.Fatalf("expected 2 top-level terms, got %d", len(parsed.Terms))
	}

	nameTerm, ok := parsed.Terms[1].(*NameTerm)
	if !ok {
		t.Fatalf("second term is %T, want *NameTerm", parsed.Terms[1])
	}

	ref, ok := nameTerm.Value.(*NameRef)
	if !ok {
		t.Fatalf("Name value is %T, want *NameRef", nameTerm.Value)
	}
	if ref.Name != "FOO_" {
		t.Fatalf("name ref = %q, want FOO_", ref.Name)
	}
}

// TestParseIfWithLEqualPredicate covers If (LEqual (Local0, One)) {}, the
// single most common DSDT predicate shape. LEqual is a standalone top-level
// opcode (0x93), distinct from the 0x92-prefixed LNot family that also
// produces "!=" / "<=" / ">=" via parseLNot.
func TestParseIfWithLEqualPredicate(t *testing.T) {
	predicate := []byte{opLEqualByte, opLocal0, opOne}

	var code []byte
	code = append(code, opIf)
	code = append(code, byte(len(predicate)+1))
	code = append(code, predicate...)

	parsed, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(parsed.Terms) != 1 {
		t.Fatalf("expected 1 top-level term, got %d", len(parsed.Terms))
	}

	ifTerm, ok := parsed.Terms[0].(*IfTerm)
	if !ok {
		t.Fatalf("term is %T, want *IfTerm", parsed.Terms[0])
	}

	expr, ok := ifTerm.Predicate.(*ExpressionArg)
	if !ok {
		t.Fatalf("predicate is %T, want *ExpressionArg", ifTerm.Predicate)
	}
	cmp, ok := expr.Term.(*LogicalBinaryTerm)
	if !ok {
		t.Fatalf("predicate term is %T, want *LogicalBinaryTerm", expr.Term)
	}
	if cmp.Op != "==" {
		t.Fatalf("predicate op = %q, want \"==\"", cmp.Op)
	}
	if _, ok := cmp.Arg1.(*LocalRef); !ok {
		t.Fatalf("predicate arg1 is %T, want *LocalRef", cmp.Arg1)
	}
	if _, ok := cmp.Arg2.(*DataObject); !ok {
		t.Fatalf("predicate arg2 is %T, want *DataObject", cmp.Arg2)
	}
}

// TestParseScopeWithIfElse exercises package-length-bounded nesting (Scope),
// predicate parsing and the Else-attachment decision together.
func TestParseScopeWithIfElse(t *testing.T) {
	// If (Zero) {} Else {}
	ifBody := []byte{opZero}
	var ifBlock []byte
	ifBlock = append(ifBlock, opIf)
	ifBlock = append(ifBlock, byte(len(ifBody)+1)|0x00) // no-follow pkglength, low6 = len+1
	ifBlock = append(ifBlock, ifBody...)

	elseBody := []byte{}
	ifBlock = append(ifBlock, opElse)
	ifBlock = append(ifBlock, byte(len(elseBody)+1))

	var scopeBody []byte
	scopeBody = append(scopeBody, nameBytes("_SB_")...)
	scopeBody = append(scopeBody, ifBlock...)

	var code []byte
	code = append(code, opScope)
	code = append(code, byte(len(scopeBody)+1))
	code = append(code, scopeBody...)

	parsed, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(parsed.Terms) != 1 {
		t.Fatalf("expected 1 top-level term, got %d", len(parsed.Terms))
	}

	scope, ok := parsed.Terms[0].(*ScopeTerm)
	if !ok {
		t.Fatalf("term is %T, want *ScopeTerm", parsed.Terms[0])
	}
	if scope.Name != "_SB_" {
		t.Fatalf("scope name = %q, want _SB_", scope.Name)
	}
	if len(scope.Terms) != 2 {
		t.Fatalf("expected 2 terms inside scope (If and its attached Else), got %d", len(scope.Terms))
	}

	ifTerm, ok := scope.Terms[0].(*IfTerm)
	if !ok {
		t.Fatalf("scope's first term is %T, want *IfTerm", scope.Terms[0])
	}
	if len(ifTerm.Terms) != 0 {
		t.Fatalf("expected empty If body, got %d terms", len(ifTerm.Terms))
	}

	elseTerm, ok := scope.Terms[1].(*ElseTerm)
	if !ok {
		t.Fatalf("scope's second term is %T, want *ElseTerm", scope.Terms[1])
	}
	if len(elseTerm.Terms) != 0 {
		t.Fatalf("expected empty Else body, got %d terms", len(elseTerm.Terms))
	}
}
