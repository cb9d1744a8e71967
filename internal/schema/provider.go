package schema

// Provider is one source of typed symbols. All lookups are
// case-insensitive and must be safe for concurrent reads: providers are
// read-only snapshots during a validation pass.
type Provider interface {
	Property(name string) *Symbol
	Item(name string) *Symbol
	// Metadata resolves metadata, optionally scoped to an item. An empty
	// itemName matches metadata on any item plus the well-known set.
	Metadata(itemName, name string) *Symbol
	Task(name string) *Symbol
	Target(name string) *Symbol
}

// Resolver aggregates an ordered list of providers; the first non-nil
// result wins, so explicit schemas shadow imported ones and both shadow
// the current document's inferred schema.
type Resolver struct {
	providers []Provider
}

func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Providers returns the ordered provider list.
func (r *Resolver) Providers() []Provider {
	return r.providers
}

// Excluding returns a view that skips the given provider. The validator
// uses it to decide whether a symbol is genuinely declared somewhere
// other than the document's own inferred schema; without it a document
// would discover its own unused declarations as used.
func (r *Resolver) Excluding(p Provider) *Resolver {
	out := make([]Provider, 0, len(r.providers))
	for _, cur := range r.providers {
		if cur != p {
			out = append(out, cur)
		}
	}
	return &Resolver{providers: out}
}

func (r *Resolver) Property(name string) *Symbol {
	for _, p := range r.providers {
		if s := p.Property(name); s != nil {
			return s
		}
	}
	return nil
}

func (r *Resolver) Item(name string) *Symbol {
	for _, p := range r.providers {
		if s := p.Item(name); s != nil {
			return s
		}
	}
	return nil
}

func (r *Resolver) Metadata(itemName, name string) *Symbol {
	for _, p := range r.providers {
		if s := p.Metadata(itemName, name); s != nil {
			return s
		}
	}
	return nil
}

func (r *Resolver) Task(name string) *Symbol {
	for _, p := range r.providers {
		if s := p.Task(name); s != nil {
			return s
		}
	}
	return nil
}

func (r *Resolver) Target(name string) *Symbol {
	for _, p := range r.providers {
		if s := p.Target(name); s != nil {
			return s
		}
	}
	return nil
}

// ValueMatch is the outcome of checking a literal against a symbol's
// custom-type capability. Exactly three outcomes exist.
type ValueMatch uint8

const (
	// Matched: the literal equals one of the declared known values.
	Matched ValueMatch = iota
	// UnknownAllowed: not in the set, but the set is open (or absent).
	UnknownAllowed
	// UnknownError: not in the set and the set is closed.
	UnknownError
)

// KnownValue checks text against sym's custom type. Returns the
// canonical spelling of the matched value when the outcome is Matched.
func KnownValue(sym *Symbol, text string) (ValueMatch, string) {
	if sym == nil || sym.CustomType == nil || len(sym.CustomType.Values) == 0 {
		return UnknownAllowed, ""
	}
	folded := FoldName(text)
	for _, v := range sym.CustomType.Values {
		if FoldName(v) == folded {
			return Matched, v
		}
	}
	if sym.CustomType.AllowUnknown {
		return UnknownAllowed, ""
	}
	return UnknownError, ""
}

// StaticProvider is a map-backed provider used for builtin and
// user-declared schemas. Keys are folded names.
type StaticProvider struct {
	Properties map[string]*Symbol
	Items      map[string]*Symbol
	// ItemMetadata is keyed "item\x00meta"; WellKnownMetadata applies to
	// every item.
	ItemMetadata     map[string]*Symbol
	WellKnownMetadata map[string]*Symbol
	Tasks            map[string]*Symbol
	Targets          map[string]*Symbol
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		Properties:        make(map[string]*Symbol),
		Items:             make(map[string]*Symbol),
		ItemMetadata:      make(map[string]*Symbol),
		WellKnownMetadata: make(map[string]*Symbol),
		Tasks:             make(map[string]*Symbol),
		Targets:           make(map[string]*Symbol),
	}
}

func metaKey(itemName, name string) string {
	return FoldName(itemName) + "\x00" + FoldName(name)
}

func (p *StaticProvider) Property(name string) *Symbol {
	return p.Properties[FoldName(name)]
}

func (p *StaticProvider) Item(name string) *Symbol {
	return p.Items[FoldName(name)]
}

func (p *StaticProvider) Metadata(itemName, name string) *Symbol {
	if itemName != "" {
		if s := p.ItemMetadata[metaKey(itemName, name)]; s != nil {
			return s
		}
	} else {
		// Unqualified: any item-scoped metadata with this name counts.
		suffix := "\x00" + FoldName(name)
		for k, s := range p.ItemMetadata {
			if len(k) >= len(suffix) && k[len(k)-len(suffix):] == suffix {
				return s
			}
		}
	}
	return p.WellKnownMetadata[FoldName(name)]
}

func (p *StaticProvider) Task(name string) *Symbol {
	return p.Tasks[FoldName(name)]
}

func (p *StaticProvider) Target(name string) *Symbol {
	return p.Targets[FoldName(name)]
}

// AddProperty registers sym under its folded name.
func (p *StaticProvider) AddProperty(sym *Symbol) {
	sym.SymKind = SymProperty
	p.Properties[FoldName(sym.Name)] = sym
}

func (p *StaticProvider) AddItem(sym *Symbol) {
	sym.SymKind = SymItem
	p.Items[FoldName(sym.Name)] = sym
}

func (p *StaticProvider) AddMetadata(itemName string, sym *Symbol) {
	sym.SymKind = SymMetadata
	if itemName == "" {
		p.WellKnownMetadata[FoldName(sym.Name)] = sym
		return
	}
	p.ItemMetadata[metaKey(itemName, sym.Name)] = sym
}

func (p *StaticProvider) AddTask(sym *Symbol) {
	sym.SymKind = SymTask
	p.Tasks[FoldName(sym.Name)] = sym
}

func (p *StaticProvider) AddTarget(sym *Symbol) {
	sym.SymKind = SymTarget
	p.Targets[FoldName(sym.Name)] = sym
}
