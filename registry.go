package record

import (
	"reflect"
	"sync"
)

// castEntry holds exactly one way to build a named cast.
type castEntry struct {
	factory Castable
	inbound InboundFactory
}

var (
	castRegistry  map[string]castEntry
	codecRegistry map[string]Codec
	registryMu    sync.RWMutex
)

func init() {
	castRegistry = builtinCasts()
	codecRegistry = builtinCodecs()
}

func builtinCasts() map[string]castEntry {
	return map[string]castEntry{
		CastCollection: {factory: AsCollection{}},
		CastDate:       {factory: AsDate{}},
		CastEncrypted:  {factory: AsEncrypted{}},
		CastHashed:     {inbound: NewHashedCast},
		CastMasked:     {factory: AsMasked{}},
		CastUUID:       {factory: AsUUID{}},
		CastArray:      {factory: AsArray{}},
	}
}

func builtinCodecs() map[string]Codec {
	return map[string]Codec{
		CodecJSON: jsonCodec{},
	}
}

// Register makes a cast factory available under name.
// A later registration replaces an earlier one.
func Register(name string, c Castable) {
	registryMu.Lock()
	defer registryMu.Unlock()
	castRegistry[name] = castEntry{factory: c}
}

// RegisterInbound makes an inbound cast constructor available under name.
func RegisterInbound(name string, f InboundFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	castRegistry[name] = castEntry{inbound: f}
}

// Registered reports whether a cast is registered under name.
func Registered(name string) bool {
	_, ok := lookupCast(name)
	return ok
}

func lookupCast(name string) (castEntry, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	entry, ok := castRegistry[name]
	return entry, ok
}

// RegisterCodec makes a codec available to encoding casts under name.
func RegisterCodec(name string, c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	codecRegistry[name] = c
}

// LookupCodec returns the codec registered under name.
func LookupCodec(name string) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := codecRegistry[name]
	if !ok {
		return nil, newConfigError(ErrMissingCodec, name, "")
	}
	return c, nil
}

// Reset restores the cast and codec registries to their built-in state and
// clears cached shapes. This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	castRegistry = builtinCasts()
	codecRegistry = builtinCodecs()
	registryMu.Unlock()

	shapesMu.Lock()
	shapes = make(map[reflect.Type]*Shape)
	shapesMu.Unlock()
}
