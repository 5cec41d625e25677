package values

// Catalog is the set of reference tokens main law allows the node to cite.
// It is built once per run and never mutated afterwards.
type Catalog struct {
	tokens map[Kind][]string
	lookup map[Kind]map[string]struct{}
}

// BuildCatalog collects the public reference tokens of main, in main's key order.
func BuildCatalog(main *ValueSet) *Catalog {
	c := &Catalog{
		tokens: make(map[Kind][]string, len(Kinds)),
		lookup: make(map[Kind]map[string]struct{}, len(Kinds)),
	}
	for _, kind := range Kinds {
		set := make(map[string]struct{})
		var ordered []string
		for _, e := range main.Mapping(kind).Entries() {
			if !IsPublicRef(e.Key) {
				continue
			}
			set[e.Key] = struct{}{}
			ordered = append(ordered, e.Key)
		}
		c.tokens[kind] = ordered
		c.lookup[kind] = set
	}
	return c
}

// Tokens returns the citable tokens of kind in catalog order.
func (c *Catalog) Tokens(kind Kind) []string {
	if c == nil {
		return nil
	}
	src := c.tokens[kind]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Contains reports whether token may be cited for kind.
func (c *Catalog) Contains(kind Kind, token string) bool {
	if c == nil {
		return false
	}
	_, ok := c.lookup[kind][token]
	return ok
}

// Len returns the number of citable tokens across all kinds.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, kind := range Kinds {
		n += len(c.tokens[kind])
	}
	return n
}
