package values

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// AlignedPlaceholder stands in for an empty delta. It is not a value entry.
const AlignedPlaceholder = "• (aligned with main repo)"

// DefinitionLimit is the display length of a reconciled definition.
const DefinitionLimit = 100

// Ellipsis marks a truncated text.
const Ellipsis = "..."

// reconciledKinds excludes rules: they are procedural, not identity-bearing.
var reconciledKinds = []Kind{KindTerms, KindPrinciples}

// PrivateValue is a fork value main law does not carry.
type PrivateValue struct {
	Kind       Kind
	Key        string
	Definition string
}

// Line renders the value the way it is shown to the oracle and in headers.
func (p PrivateValue) Line() string {
	return fmt.Sprintf("• %s: \"%s\"", p.Key, p.Definition)
}

// Delta is the set of fork values absent from main law, in fork order.
type Delta struct {
	Values []PrivateValue
}

// Aligned reports whether the fork carries no private values.
func (d Delta) Aligned() bool {
	return len(d.Values) == 0
}

// String renders one line per value, or AlignedPlaceholder when there are none.
func (d Delta) String() string {
	if d.Aligned() {
		return AlignedPlaceholder
	}
	lines := make([]string, len(d.Values))
	for i, v := range d.Values {
		lines[i] = v.Line()
	}
	return strings.Join(lines, "\n")
}

// Reconcile returns the public fork terms and principles that main law lacks
// and that resolve to a non-blank definition.
func Reconcile(fork, main *ValueSet) Delta {
	var delta Delta
	for _, kind := range reconciledKinds {
		mainMapping := main.Mapping(kind)
		for _, e := range fork.Mapping(kind).Entries() {
			if !IsPublicRef(e.Key) || mainMapping.Has(e.Key) {
				continue
			}
			def := e.Definition()
			if strings.TrimSpace(def) == "" {
				continue
			}
			delta.Values = append(delta.Values, PrivateValue{
				Kind:       kind,
				Key:        e.Key,
				Definition: Truncate(def, DefinitionLimit),
			})
		}
	}
	return delta
}

// Truncate cuts s to limit characters and appends Ellipsis. Texts within the limit are unchanged.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + Ellipsis
}
