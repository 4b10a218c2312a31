package record

// Override interfaces let a shape type supply configuration that struct tags
// cannot express. FromStruct checks for them on the value it is given and
// applies them after the tags, so they win on conflict.
//
// These interfaces are designed for codegen: a generator can emit them from
// the same source that produces the struct tags.

// CastsProvider supplies casts for a shape type.
// Values follow the rules of NewCastSpec.
type CastsProvider interface {
	Casts() map[string]any
}

// FillableProvider supplies additional fillable keys for a shape type.
type FillableProvider interface {
	Fillable() []string
}

// MutatorsProvider supplies inline mutators for a shape type.
type MutatorsProvider interface {
	Mutators() map[string]Mutator
}
