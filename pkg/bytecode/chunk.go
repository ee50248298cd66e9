package bytecode

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/vci/compiler"
)

// BytecodeVersion is the current chunk format version.
// Increment when making incompatible changes to the format.
const BytecodeVersion uint16 = 1

// Magic bytes for chunk files: "VCIB" (VCI Bytes)
var BytecodeMagic = []byte{'V', 'C', 'I', 'B'}

// cborEncMode uses canonical encoding so that identical sequences encode,
// and hash, identically.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Instruction is the stored form of one VCI entry.
type Instruction struct {
	Type   compiler.TokenType `cbor:"1,keyasint"`
	Lexeme string             `cbor:"2,keyasint,omitempty"`
	Number *float64           `cbor:"3,keyasint,omitempty"` // numeric literal payload
	Text   *string            `cbor:"4,keyasint,omitempty"` // string literal payload
	Line   int                `cbor:"5,keyasint,omitempty"`
	Column int                `cbor:"6,keyasint,omitempty"`
}

// Chunk is a translated program ready to be stored or executed.
type Chunk struct {
	Version uint16        `cbor:"1,keyasint"`
	Name    string        `cbor:"2,keyasint,omitempty"` // usually the source file
	Hash    [32]byte      `cbor:"3,keyasint"`           // sha256 of the encoded Code
	Code    []Instruction `cbor:"4,keyasint"`
}

// NewChunk creates a chunk holding code. Placeholders must already be
// resolved.
func NewChunk(name string, code []compiler.Token) (*Chunk, error) {
	c := &Chunk{
		Version: BytecodeVersion,
		Name:    name,
		Code:    make([]Instruction, len(code)),
	}
	for i, tok := range code {
		c.Code[i] = instructionFromToken(tok)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashCode(c.Code)
	if err != nil {
		return nil, err
	}
	c.Hash = hash
	return c, nil
}

func instructionFromToken(tok compiler.Token) Instruction {
	in := Instruction{
		Type:   tok.Type,
		Lexeme: tok.Lexeme,
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column,
	}
	switch lit := tok.Literal.(type) {
	case float64:
		in.Number = &lit
	case string:
		in.Text = &lit
	}
	return in
}

// Token converts the instruction back to a token.
func (in Instruction) Token() compiler.Token {
	tok := compiler.Token{
		Type:   in.Type,
		Lexeme: in.Lexeme,
		Pos:    compiler.Position{Line: in.Line, Column: in.Column},
	}
	switch {
	case in.Number != nil:
		tok.Literal = *in.Number
	case in.Text != nil:
		tok.Literal = *in.Text
	}
	return tok
}

// Tokens returns the instruction sequence as tokens for the executor.
func (c *Chunk) Tokens() []compiler.Token {
	code := make([]compiler.Token, len(c.Code))
	for i, in := range c.Code {
		code[i] = in.Token()
	}
	return code
}

// Len returns the number of instructions.
func (c *Chunk) Len() int {
	return len(c.Code)
}

// Validate checks that every instruction has a known kind, that no
// placeholder survived translation and that every address lands inside
// the sequence (its end included).
func (c *Chunk) Validate() error {
	for i, in := range c.Code {
		if !in.Type.Valid() || in.Type == compiler.TokenEOF || in.Type == compiler.TokenError {
			return fmt.Errorf("instruction %d: invalid kind %d", i, in.Type)
		}
		switch in.Type {
		case compiler.TokenEmpty:
			return fmt.Errorf("instruction %d: unresolved jump placeholder", i)
		case compiler.TokenAddress:
			target, err := strconv.Atoi(in.Lexeme)
			if err != nil {
				return fmt.Errorf("instruction %d: malformed address %q", i, in.Lexeme)
			}
			if target < 0 || target > len(c.Code) {
				return fmt.Errorf("instruction %d: address %d outside 0..%d", i, target, len(c.Code))
			}
		}
	}
	return nil
}

// HashCode returns the content hash of an instruction sequence.
func HashCode(code []Instruction) ([32]byte, error) {
	data, err := cborEncMode.Marshal(code)
	if err != nil {
		return [32]byte{}, fmt.Errorf("bytecode: encode code: %w", err)
	}
	return sha256.Sum256(data), nil
}

// Serialize encodes the chunk: magic bytes followed by canonical CBOR.
func (c *Chunk) Serialize() ([]byte, error) {
	body, err := cborEncMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal chunk: %w", err)
	}
	buf := make([]byte, 0, len(BytecodeMagic)+len(body))
	buf = append(buf, BytecodeMagic...)
	return append(buf, body...), nil
}

// Deserialize decodes and verifies a chunk.
func Deserialize(data []byte) (*Chunk, error) {
	if len(data) < len(BytecodeMagic) {
		return nil, fmt.Errorf("bytecode too short: need at least %d bytes, got %d", len(BytecodeMagic), len(data))
	}
	if string(data[:len(BytecodeMagic)]) != string(BytecodeMagic) {
		return nil, fmt.Errorf("invalid bytecode magic: expected %q, got %q", BytecodeMagic, data[:len(BytecodeMagic)])
	}

	var c Chunk
	if err := cbor.Unmarshal(data[len(BytecodeMagic):], &c); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	if c.Version > BytecodeVersion {
		return nil, fmt.Errorf("bytecode version %d is newer than supported version %d", c.Version, BytecodeVersion)
	}
	hash, err := HashCode(c.Code)
	if err != nil {
		return nil, err
	}
	if hash != c.Hash {
		return nil, fmt.Errorf("bytecode hash mismatch: stored %x, computed %x", c.Hash[:8], hash[:8])
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// WriteFile serializes the chunk to path.
func (c *Chunk) WriteFile(path string) error {
	data, err := c.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a chunk written by WriteFile.
func ReadFile(path string) (*Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
