package rig

// BlendName is a logical facial control, independent of avatar naming.
type BlendName string

const (
	BlendBlinkL BlendName = "BlinkL"
	BlendBlinkR BlendName = "BlinkR"
	BlendA      BlendName = "A"
	BlendI      BlendName = "I"
	BlendU      BlendName = "U"
	BlendE      BlendName = "E"
	BlendO      BlendName = "O"
)

// blendAliases pairs the grouped name some avatars ship with the canonical
// preset name every runtime understands.
type blendAliases struct {
	native string
	preset string
}

var blendNames = map[BlendName]blendAliases{
	BlendBlinkL: {native: "Blink_L", preset: "EyeBlinkLeft"},
	BlendBlinkR: {native: "Blink_R", preset: "EyeBlinkRight"},
	BlendA:      {native: "A", preset: "aa"},
	BlendI:      {native: "I", preset: "ih"},
	BlendU:      {native: "U", preset: "ou"},
	BlendE:      {native: "E", preset: "ee"},
	BlendO:      {native: "O", preset: "oh"},
}

// Catalog is the set of blendshape names a loaded avatar exposes.
// It is built once per avatar load and never modified.
type Catalog struct {
	names map[string]struct{}
}

// NewCatalog builds a catalog from the avatar's blendshape names.
func NewCatalog(names ...string) Catalog {
	c := Catalog{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		c.names[n] = struct{}{}
	}
	return c
}

// Has reports whether the avatar exposes name.
func (c Catalog) Has(name string) bool {
	_, ok := c.names[name]
	return ok
}

// Len returns the number of names.
func (c Catalog) Len() int {
	return len(c.names)
}

// Resolver maps logical blend names to the concrete names of one avatar.
// Results are cached for the lifetime of the resolver; build a new one when a
// different avatar is loaded.
type Resolver struct {
	catalog Catalog
	cache   map[BlendName]string
}

// NewResolver creates a resolver bound to catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{
		catalog: catalog,
		cache:   make(map[BlendName]string),
	}
}

// Resolve returns the avatar-native grouped name when the catalog has it and
// the canonical preset name otherwise. Unknown logical names resolve to
// themselves.
func (r *Resolver) Resolve(logical BlendName) string {
	if name, ok := r.cache[logical]; ok {
		return name
	}

	name := string(logical)
	if aliases, ok := blendNames[logical]; ok {
		if r.catalog.Has(aliases.native) {
			name = aliases.native
		} else {
			name = aliases.preset
		}
	}

	r.cache[logical] = name
	return name
}

// Lookup resolves logical and reports whether the avatar actually exposes
// the resolved name.
func (r *Resolver) Lookup(logical BlendName) (string, bool) {
	name := r.Resolve(logical)
	return name, r.catalog.Has(name)
}

// Catalog returns the catalog the resolver was built for.
func (r *Resolver) Catalog() Catalog {
	return r.catalog
}
