package lexer

import "testing"

func TestNextTokenBasics(t *testing.T) {
	input := `module demo
class Main {
    pub fn fly(args: [String]) -> Void {
        println("hello")
    }
}`
	want := []TokenType{
		MODULE, IDENT,
		CLASS, TYPE_IDENT, LBRACE,
		PUB, FN, IDENT, LPAREN, IDENT, COLON, LBRACKET, TYPE_IDENT, RBRACKET, RPAREN, ARROW, TYPE_IDENT, LBRACE,
		IDENT, LPAREN, STRING, RPAREN,
		RBRACE,
		RBRACE,
		EOF,
	}
	toks := Tokenize([]byte(input), "demo.fly")
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s (%q)", i, toks[i].Type, w, toks[i].Literal)
		}
	}
}

func TestNumericLiterals(t *testing.T) {
	cases := []struct {
		src  string
		typ  TokenType
		lit  string
	}{
		{"123", INT, "123"},
		{"0x1F", INT, "0x1F"},
		{"0b1010", INT, "0b1010"},
		{"0o17", INT, "0o17"},
		{"1_000_000", INT, "1_000_000"},
		{"3.14", FLOAT, "3.14"},
		{"1e10", FLOAT, "1e10"},
		{"1.5e-3", FLOAT, "1.5e-3"},
	}
	for _, c := range cases {
		toks := Tokenize([]byte(c.src), "t")
		if toks[0].Type != c.typ || toks[0].Literal != c.lit {
			t.Errorf("%q: got %s %q, want %s %q", c.src, toks[0].Type, toks[0].Literal, c.typ, c.lit)
		}
	}
}

func TestUnterminatedStringRecovers(t *testing.T) {
	l := New(Normalize([]byte(`"abc`)), "t")
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("got %s, want STRING", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lexer error, got %d", len(l.Errors()))
	}
	if l.NextToken().Type != EOF {
		t.Fatalf("lexing should continue to EOF after error")
	}
}

func TestDocCommentToken(t *testing.T) {
	toks := Tokenize([]byte("/// does a thing\nfn f() {}"), "t")
	if toks[0].Type != DOC_COMMENT {
		t.Fatalf("got %s, want DOC_COMMENT", toks[0].Type)
	}
	if toks[0].Literal != "does a thing" {
		t.Fatalf("got %q", toks[0].Literal)
	}
}

func TestInterpolatedString(t *testing.T) {
	toks := Tokenize([]byte(`f"hi {name}"`), "t")
	if toks[0].Type != FSTRING {
		t.Fatalf("got %s, want FSTRING", toks[0].Type)
	}
}

func TestCapitalizedIdentIsTypeIdent(t *testing.T) {
	toks := Tokenize([]byte("Color"), "t")
	if toks[0].Type != TYPE_IDENT {
		t.Fatalf("got %s, want TYPE_IDENT", toks[0].Type)
	}
}
