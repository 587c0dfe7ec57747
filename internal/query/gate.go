package query

import (
	"fmt"
	"strings"
)

// Class is the coarse statement classification used to route SQL to the
// right tool.
type Class int

const (
	ReadOnly Class = iota
	Mutating
)

func (c Class) String() string {
	if c == ReadOnly {
		return "read-only"
	}
	return "mutating"
}

// Policy is the set of leading keywords admitted through the read-only gate.
// The check is purely syntactic: it looks at the first token and nothing
// else, so parameterized arguments remain the caller's responsibility.
type Policy struct {
	readKeywords map[string]bool
}

// DefaultPolicy admits only SELECT through the read-only gate.
func DefaultPolicy() Policy {
	return Policy{readKeywords: map[string]bool{"SELECT": true}}
}

// PolicyWithShow additionally admits SHOW statements, for clients that browse
// schema metadata through the query tool.
func PolicyWithShow() Policy {
	return Policy{readKeywords: map[string]bool{"SELECT": true, "SHOW": true}}
}

// Classify derives the statement class from the normalized leading keyword.
func (p Policy) Classify(sql string) Class {
	if p.readKeywords[leadingKeyword(sql)] {
		return ReadOnly
	}
	return Mutating
}

// Enforce rejects a statement routed to the wrong tool. The returned errors
// double as user-facing messages, so they name the tool to use instead.
func (p Policy) Enforce(sql string, expected Class) error {
	if strings.TrimSpace(sql) == "" {
		return fmt.Errorf("sql statement is empty")
	}
	actual := p.Classify(sql)
	if actual == expected {
		return nil
	}
	if expected == ReadOnly {
		return fmt.Errorf("only read-only queries are permitted here; use the execute tool for %s statements", leadingKeyword(sql))
	}
	return fmt.Errorf("statement is read-only; use the query tool for SELECT statements")
}

func leadingKeyword(sql string) string {
	trimmed := strings.TrimSpace(sql)
	end := len(trimmed)
	for i, r := range trimmed {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' || r == ';' {
			end = i
			break
		}
	}
	return strings.ToUpper(trimmed[:end])
}

// QuoteIdentifier backtick-quotes a MySQL identifier, doubling embedded
// backticks. Identifier arguments must go through this rather than plain
// string interpolation.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
