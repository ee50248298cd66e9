package bytecode

import (
	"fmt"
	"strings"

	"github.com/chazu/vci/compiler"
)

// Disassemble returns a human-readable listing for the chunk.
func (c *Chunk) Disassemble() string {
	var sb strings.Builder
	if c.Name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", c.Name))
	}
	sb.WriteString(fmt.Sprintf("; VCI Bytecode v%d\n", c.Version))
	sb.WriteString(fmt.Sprintf("; Hash: %x\n", c.Hash[:8]))
	sb.WriteString(fmt.Sprintf("; Instructions: %d\n\n", len(c.Code)))
	writeListing(&sb, c.Tokens())
	return sb.String()
}

// Listing returns a listing of an instruction sequence, one instruction
// per line with its address.
func Listing(code []compiler.Token) string {
	var sb strings.Builder
	writeListing(&sb, code)
	return sb.String()
}

func writeListing(sb *strings.Builder, code []compiler.Token) {
	lastLine := 0
	for addr, tok := range code {
		sb.WriteString(fmt.Sprintf("%04d  %-10s", addr, tok.Type))

		switch tok.Type {
		case compiler.TokenAddress:
			if target, err := tok.Address(); err == nil {
				sb.WriteString(fmt.Sprintf(" -> %04d", target))
			} else {
				sb.WriteString(" -> " + tok.Lexeme)
			}
		case compiler.TokenEmpty:
			sb.WriteString(" ???")
		case compiler.TokenString:
			display := tok.Lexeme
			if len(display) > 40 {
				display = display[:37] + `..."`
			}
			sb.WriteString(" " + display)
		case compiler.TokenIdentifier, compiler.TokenNumber:
			sb.WriteString(" " + tok.Lexeme)
		}

		if line := tok.Line(); line > 0 && line != lastLine {
			sb.WriteString(fmt.Sprintf("  ; line %d", line))
			lastLine = line
		}
		sb.WriteString("\n")
	}
}
