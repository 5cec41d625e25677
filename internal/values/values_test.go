package values

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func mustMapping(t *testing.T, doc string) *Mapping {
	t.Helper()
	m, err := ParseMapping([]byte(doc))
	require.NoError(t, err)
	return m
}

func valueSet(t *testing.T, terms, principles string) *ValueSet {
	t.Helper()
	vs := NewValueSet()
	if terms != "" {
		vs.Terms = mustMapping(t, terms)
	}
	if principles != "" {
		vs.Principles = mustMapping(t, principles)
	}
	return vs
}

func keys(m *Mapping) []string {
	var out []string
	for _, e := range m.Entries() {
		out = append(out, e.Key)
	}
	return out
}

func TestParseMapping_PreservesOrder(t *testing.T) {
	m := mustMapping(t, `{"@zeta": "z", "@alpha": {"definition": "a"}, "@mid": 3}`)
	assert.Equal(t, []string{"@zeta", "@alpha", "@mid"}, keys(m))
	assert.Equal(t, 3, m.Len())
}

func TestParseMapping_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	m := mustMapping(t, `{"@a": "first", "@b": "b", "@a": "last"}`)
	assert.Equal(t, []string{"@a", "@b"}, keys(m))
	e, ok := m.Get("@a")
	require.True(t, ok)
	assert.Equal(t, "last", e.Definition())
}

func TestParseMapping_RejectsNonObject(t *testing.T) {
	_, err := ParseMapping([]byte(`["@a"]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ParseMapping([]byte(``))
	assert.Error(t, err)

	_, err = ParseMapping([]byte(`{"@a": }`))
	assert.Error(t, err)
}

func TestEntryDefinition(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"scalar", `"plain text"`, "plain text"},
		{"blank scalar", `"   "`, ""},
		{"definition wins", `{"definition": "d", "summary": "s"}`, "d"},
		{"summary fallback", `{"summary": "s", "description": "x"}`, "s"},
		{"description fallback", `{"description": "x"}`, "x"},
		{"present empty definition stops chain", `{"definition": "", "summary": "s"}`, ""},
		{"non-string definition", `{"definition": 42}`, ""},
		{"no known fields", `{"label": "l"}`, ""},
		{"number", `12`, ""},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Entry{Key: "@k", Raw: []byte(tt.raw)}.Definition())
		})
	}
}

func TestIsPublicRef(t *testing.T) {
	assert.True(t, IsPublicRef("@privacy"))
	assert.False(t, IsPublicRef("@_draft"))
	assert.False(t, IsPublicRef("privacy"))
	assert.False(t, IsPublicRef(""))
}

func TestReconcile_OnlyPrivatePublicTokens(t *testing.T) {
	fork := valueSet(t,
		`{"@privacy": "data minimization by default", "@fairness": "FAIRNESS IN CAPS", "@_secret": "hidden", "plain": "no sigil"}`,
		`{"@consent": {"summary": "ask first"}, "@empty": {"definition": ""}}`,
	)
	fork.Rules = mustMapping(t, `{"@rule-private": "rules are never reconciled"}`)
	main := valueSet(t, `{"@fairness": "fairness"}`, `{}`)

	got := Reconcile(fork, main)

	want := []PrivateValue{
		{Kind: KindTerms, Key: "@privacy", Definition: "data minimization by default"},
		{Kind: KindPrinciples, Key: "@consent", Definition: "ask first"},
	}
	if diff := cmp.Diff(want, got.Values); diff != "" {
		t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "• @privacy: \"data minimization by default\"\n• @consent: \"ask first\"", got.String())
}

func TestReconcile_PresentInMainIsExcludedRegardlessOfDefinition(t *testing.T) {
	fork := valueSet(t, `{"@fairness": "Equal Treatment"}`, "")
	main := valueSet(t, `{"@fairness": "equal treatment"}`, "")

	got := Reconcile(fork, main)
	assert.True(t, got.Aligned())
	assert.NotContains(t, got.String(), "@fairness")
}

func TestReconcile_IdenticalSetsYieldPlaceholder(t *testing.T) {
	doc := `{"@a": "alpha", "@b": {"definition": "beta"}}`
	fork := valueSet(t, doc, doc)
	main := valueSet(t, doc, doc)

	got := Reconcile(fork, main)
	assert.True(t, got.Aligned())
	assert.Equal(t, AlignedPlaceholder, got.String())
	assert.NotEmpty(t, got.String())
}

func TestReconcile_TruncatesLongDefinitions(t *testing.T) {
	long := strings.Repeat("x", 150)
	fork := valueSet(t, `{"@long": "`+long+`"}`, "")

	got := Reconcile(fork, NewValueSet())
	require.Len(t, got.Values, 1)
	assert.Equal(t, strings.Repeat("x", 100)+"...", got.Values[0].Definition)
}

func TestTruncate(t *testing.T) {
	exactly := strings.Repeat("a", 100)
	assert.Equal(t, exactly, Truncate(exactly, 100))
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "ab...", Truncate("abc", 2))

	// Character based, not byte based.
	accented := strings.Repeat("é", 100)
	assert.Equal(t, accented, Truncate(accented, 100))
	assert.Equal(t, strings.Repeat("é", 99)+"...", Truncate(accented, 99))
}

func TestBuildCatalog(t *testing.T) {
	main := valueSet(t,
		`{"@fairness": "f", "@_internal": "i", "bare": "b", "@transparency": "t"}`,
		`{"@consent": "c"}`,
	)
	main.Rules = mustMapping(t, `{"@quorum": "q"}`)

	c := BuildCatalog(main)
	assert.Equal(t, []string{"@fairness", "@transparency"}, c.Tokens(KindTerms))
	assert.Equal(t, []string{"@consent"}, c.Tokens(KindPrinciples))
	assert.Equal(t, []string{"@quorum"}, c.Tokens(KindRules))
	assert.True(t, c.Contains(KindTerms, "@fairness"))
	assert.False(t, c.Contains(KindTerms, "@_internal"))
	assert.False(t, c.Contains(KindPrinciples, "@fairness"))
	assert.Equal(t, 4, c.Len())

	tokens := c.Tokens(KindTerms)
	tokens[0] = "@mutated"
	assert.Equal(t, "@fairness", c.Tokens(KindTerms)[0])
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadMain_ReadsAllFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "terms.json"), `{"@fairness": "f"}`)
	writeFile(t, filepath.Join(root, "data", "principles.json"), `{"@consent": "c"}`)
	writeFile(t, filepath.Join(root, "data", "rules.json"), `{"@quorum": "q"}`)
	writeFile(t, filepath.Join(root, "data", "governance.json"), `{"quorum": 3}`)

	vs := LoadMain(root, zap.NewNop())
	assert.True(t, vs.Terms.Has("@fairness"))
	assert.True(t, vs.Principles.Has("@consent"))
	assert.True(t, vs.Rules.Has("@quorum"))
	assert.JSONEq(t, `{"quorum": 3}`, string(vs.Governance))
}

func TestLoadFork_MissingFilesAreEmptyAndLogged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "terms.json"), `{"@privacy": "p"}`)
	writeFile(t, filepath.Join(root, "data", "principles.json"), `not json`)

	core, logs := observer.New(zapcore.DebugLevel)
	vs := LoadFork(root, zap.New(core))

	assert.Equal(t, 1, vs.Terms.Len())
	assert.Equal(t, 0, vs.Principles.Len())
	assert.Equal(t, 0, vs.Rules.Len())
	assert.Nil(t, vs.Governance)
	assert.Equal(t, 2, logs.FilterMessage("Failed to load values file").Len())
}
