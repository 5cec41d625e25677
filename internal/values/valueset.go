// Package values holds the fork and main value sets, the reference catalog
// derived from main law, and the reconciliation of fork values against it.
package values

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RefSigil prefixes every reference token. Tokens starting with PrivatePrefix are internal.
const (
	RefSigil      = "@"
	PrivatePrefix = "@_"
)

// Kind names one of the three value mappings.
type Kind string

const (
	KindTerms      Kind = "terms"
	KindPrinciples Kind = "principles"
	KindRules      Kind = "rules"
)

// Kinds lists every mapping kind in file-load order.
var Kinds = []Kind{KindTerms, KindPrinciples, KindRules}

// ErrNotObject is returned when a values document is not a JSON object.
var ErrNotObject = errors.New("values document is not a JSON object")

// IsPublicRef reports whether token is a citable reference token.
func IsPublicRef(token string) bool {
	return strings.HasPrefix(token, RefSigil) && !strings.HasPrefix(token, PrivatePrefix)
}

// Entry is one reference token and its undecoded value.
type Entry struct {
	Key string
	Raw json.RawMessage
}

// definitionFields is the fallback chain for structured entries.
var definitionFields = []string{"definition", "summary", "description"}

// Definition resolves the human-readable definition of the entry.
// A record yields the first field of the chain that is present, even when that
// field is empty. A scalar string is used when it is not blank.
func (e Entry) Definition() string {
	raw := bytes.TrimSpace(e.Raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '{':
		var record map[string]json.RawMessage
		if err := json.Unmarshal(raw, &record); err != nil {
			return ""
		}
		for _, field := range definitionFields {
			if v, ok := record[field]; ok {
				return stringValue(v)
			}
		}
		return ""
	case '"':
		s := stringValue(raw)
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return s
	}
	return ""
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Mapping is a reference-token mapping that keeps the insertion order of its source document.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// ParseMapping decodes a JSON object, preserving key order.
// A repeated key keeps its first position and its last value.
func ParseMapping(data []byte) (*Mapping, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read values document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	m := NewMapping()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode value for %q: %w", key, err)
		}
		m.Set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to close values document: %w", err)
	}
	return m, nil
}

// Set inserts or replaces an entry.
func (m *Mapping) Set(key string, raw json.RawMessage) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Raw = raw
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Raw: raw})
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

// Get returns the entry stored under key.
func (m *Mapping) Get(key string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Entries returns the entries in insertion order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// ValueSet is one loaded set of terms, principles and rules.
// Governance is only populated for main law and is opaque to the node.
type ValueSet struct {
	Terms      *Mapping
	Principles *Mapping
	Rules      *Mapping
	Governance json.RawMessage
}

// NewValueSet returns a value set with empty mappings.
func NewValueSet() *ValueSet {
	return &ValueSet{
		Terms:      NewMapping(),
		Principles: NewMapping(),
		Rules:      NewMapping(),
	}
}

// Mapping returns the mapping for kind. It never returns nil.
func (v *ValueSet) Mapping(kind Kind) *Mapping {
	if v == nil {
		return NewMapping()
	}
	var m *Mapping
	switch kind {
	case KindTerms:
		m = v.Terms
	case KindPrinciples:
		m = v.Principles
	case KindRules:
		m = v.Rules
	}
	if m == nil {
		return NewMapping()
	}
	return m
}

func (v *ValueSet) setMapping(kind Kind, m *Mapping) {
	switch kind {
	case KindTerms:
		v.Terms = m
	case KindPrinciples:
		v.Principles = m
	case KindRules:
		v.Rules = m
	}
}
