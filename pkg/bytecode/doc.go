// Package bytecode stores translated VCI programs.
//
// A chunk is the instruction sequence produced by the translator together
// with a format version and a content hash. Chunks are serialized as the
// magic bytes "VCIB" followed by canonical CBOR, so the same program always
// produces the same file:
//
//	chunk, err := bytecode.NewChunk("main.vci", code)
//	data, err := chunk.Serialize()
//	...
//	loaded, err := bytecode.Deserialize(data)
//	err = executor.Execute(loaded.Tokens())
//
// Deserialize rejects unknown versions, hash mismatches, leftover jump
// placeholders and addresses outside the sequence, so a loaded chunk can
// be handed to the executor as-is.
//
// Disassemble and Listing render instruction sequences for the -listing
// flag of the vci command.
package bytecode
