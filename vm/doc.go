// Package vm executes VCI instruction sequences.
//
// The executor walks the sequence with an explicit instruction pointer and
// an operand stack. Operands push values; operators pop their operands and
// push the result; keyword instructions (PRINT, INPUT, PROGRAM) consume
// the top of the stack. Control flow is carried by ADDRESS operands:
// IF and WHILE pop a target and a condition and jump when the condition is
// false, ELSE and END pop a target and jump unconditionally.
//
// Values are a tagged union of null, number, string and boolean, plus an
// identifier variant for names that have not been assigned yet. Variables
// live in a VariableTable and declared program names in a ProgramTable;
// both are owned by the caller so an interactive session can keep them
// across executions.
package vm
