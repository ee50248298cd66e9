package bytecode

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/vci/compiler"
)

func compile(t *testing.T, src string) []compiler.Token {
	t.Helper()
	code, err := compiler.Compile(src)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", src, err)
	}
	return code
}

func TestChunkRoundTrip(t *testing.T) {
	code := compile(t, `var x = 0; while (x < 3) { print x; x = x + 1; } print "done";`)

	c, err := NewChunk("loop.vci", code)
	if err != nil {
		t.Fatalf("NewChunk error: %v", err)
	}
	data, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if !bytes.HasPrefix(data, BytecodeMagic) {
		t.Fatalf("serialized chunk does not start with %q", BytecodeMagic)
	}

	loaded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	if loaded.Name != "loop.vci" {
		t.Errorf("Name = %q, want %q", loaded.Name, "loop.vci")
	}
	if loaded.Hash != c.Hash {
		t.Errorf("hash changed across round trip")
	}

	got := loaded.Tokens()
	if len(got) != len(code) {
		t.Fatalf("len = %d, want %d", len(got), len(code))
	}
	for i := range code {
		if got[i].Type != code[i].Type || got[i].Lexeme != code[i].Lexeme {
			t.Errorf("[%d] = %s, want %s", i, got[i], code[i])
		}
		if got[i].Literal != code[i].Literal {
			t.Errorf("[%d] literal = %v, want %v", i, got[i].Literal, code[i].Literal)
		}
		if got[i].Line() != code[i].Line() {
			t.Errorf("[%d] line = %d, want %d", i, got[i].Line(), code[i].Line())
		}
	}
}

func TestSerializeDeterministic(t *testing.T) {
	src := `var a = 1; if (a > 0) { print "pos"; } else { print "neg"; }`
	c1, err := NewChunk("a", compile(t, src))
	if err != nil {
		t.Fatal(err)
	}
	c2, err := NewChunk("a", compile(t, src))
	if err != nil {
		t.Fatal(err)
	}
	d1, _ := c1.Serialize()
	d2, _ := c2.Serialize()
	if !bytes.Equal(d1, d2) {
		t.Error("identical programs serialized differently")
	}
}

func TestDeserializeBadMagic(t *testing.T) {
	_, err := Deserialize([]byte("NOPE\x00\x01"))
	if err == nil || !strings.Contains(err.Error(), "invalid bytecode magic") {
		t.Errorf("expected magic error, got %v", err)
	}
}

func TestDeserializeTooShort(t *testing.T) {
	if _, err := Deserialize([]byte("VC")); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestDeserializeNewerVersion(t *testing.T) {
	c, err := NewChunk("", compile(t, `print 1;`))
	if err != nil {
		t.Fatal(err)
	}
	c.Version = BytecodeVersion + 1
	data, err := c.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	_, err = Deserialize(data)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("expected version error, got %v", err)
	}
}

func TestDeserializeHashMismatch(t *testing.T) {
	c, err := NewChunk("", compile(t, `print 1;`))
	if err != nil {
		t.Fatal(err)
	}
	c.Code[0].Lexeme = "2"
	data, err := c.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	_, err = Deserialize(data)
	if err == nil || !strings.Contains(err.Error(), "hash mismatch") {
		t.Errorf("expected hash mismatch, got %v", err)
	}
}

func TestNewChunkRejectsPlaceholder(t *testing.T) {
	code := []compiler.Token{
		{Type: compiler.TokenTrue, Lexeme: "true"},
		{Type: compiler.TokenEmpty},
		{Type: compiler.TokenIf, Lexeme: "IF"},
	}
	if _, err := NewChunk("", code); err == nil {
		t.Error("expected error for unresolved placeholder")
	}
}

func TestNewChunkRejectsOutOfRangeAddress(t *testing.T) {
	code := []compiler.Token{
		compiler.AddressToken(7, compiler.Position{}),
		{Type: compiler.TokenElse, Lexeme: "ELSE"},
	}
	if _, err := NewChunk("", code); err == nil {
		t.Error("expected error for address past the end")
	}

	// The end of the sequence itself is a valid target.
	code[0] = compiler.AddressToken(2, compiler.Position{})
	if _, err := NewChunk("", code); err != nil {
		t.Errorf("address at end rejected: %v", err)
	}
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.vcic")
	c, err := NewChunk("prog.vci", compile(t, `var s = "hi"; print s;`))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.WriteFile(path); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if loaded.Len() != c.Len() {
		t.Errorf("Len = %d, want %d", loaded.Len(), c.Len())
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.vcic")); err == nil {
		t.Error("expected error for missing file")
	}
}
