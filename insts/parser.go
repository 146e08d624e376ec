package insts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrSyntax is returned when a line of assembly cannot be split into an
// instruction's fields.
var ErrSyntax = errors.New("syntax error")

// ParseError reports a failure on a specific line of a program.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying syntax or validation error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses and validates a single instruction such as
// "ADD R1, R2, R3", "LOAD R1, 8(R2)" or "STORE R2, 0(R1)".
func Parse(line string) (Instruction, error) {
	fields, err := ParseFields(line)
	if err != nil {
		return nil, err
	}
	return fields.Build()
}

// ParseFields splits a line of assembly into loose fields without
// validating register names.
func ParseFields(line string) (Fields, error) {
	line = strings.TrimSpace(line)
	mnemonic, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		mnemonic, rest = line[:i], line[i+1:]
	}
	if mnemonic == "" {
		return Fields{}, fmt.Errorf("%w: empty instruction", ErrSyntax)
	}

	op, err := ParseOp(mnemonic)
	if err != nil {
		return Fields{}, err
	}

	args := splitArgs(rest)
	f := Fields{Type: op.String()}

	switch op {
	case OpLOAD, OpSTORE:
		if len(args) != 2 {
			return Fields{}, fmt.Errorf("%w: %s expects 2 operands, got %d", ErrSyntax, op, len(args))
		}
		offset, base, err := parseAddress(args[1])
		if err != nil {
			return Fields{}, err
		}
		f.Rs1 = base
		f.Offset = offset
		if op == OpLOAD {
			f.Rd = args[0]
		} else {
			f.Rs2 = args[0]
		}
	default:
		if len(args) != 3 {
			return Fields{}, fmt.Errorf("%w: %s expects 3 operands, got %d", ErrSyntax, op, len(args))
		}
		f.Rd, f.Rs1, f.Rs2 = args[0], args[1], args[2]
	}

	return f, nil
}

// ParseProgram parses one instruction per line. Blank lines and text after
// '#' or ';' are ignored.
func ParseProgram(r io.Reader) ([]Instruction, error) {
	var program []Instruction

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := stripComment(scanner.Text())
		if text == "" {
			continue
		}

		inst, err := Parse(text)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}
		program = append(program, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return program, nil
}

// FormatProgram writes one instruction per line in the syntax ParseProgram
// accepts.
func FormatProgram(w io.Writer, program []Instruction) error {
	for _, inst := range program {
		if _, err := fmt.Fprintln(w, inst.String()); err != nil {
			return err
		}
	}
	return nil
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseAddress parses "offset(base)"; the offset may be omitted.
func parseAddress(s string) (int64, string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return 0, "", fmt.Errorf("%w: address %q must be offset(base)", ErrSyntax, s)
	}

	base := strings.TrimSpace(s[open+1 : len(s)-1])
	offText := strings.TrimSpace(s[:open])
	if offText == "" {
		return 0, base, nil
	}

	offset, err := strconv.ParseInt(offText, 0, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: bad offset %q", ErrSyntax, offText)
	}
	return offset, base, nil
}
