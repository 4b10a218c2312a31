package record

import "slices"

// castCache holds rich values waiting to be flattened into raw attributes,
// in the order they were first cached.
type castCache struct {
	keys   []string
	values map[string]any
}

func (c *castCache) get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *castCache) put(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

func (c *castCache) forget(key string) {
	if _, ok := c.values[key]; !ok {
		return
	}
	delete(c.values, key)
	c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == key })
}

func (c *castCache) len() int {
	return len(c.keys)
}

// flattenFunc converts one cached rich value into a raw patch.
type flattenFunc func(key string, value any, attributes Attributes) (map[string]any, error)

// mergeInto flattens every cached value into working, in cache order.
// Entries stay cached so later merges pick up mutations of the rich values.
func (c *castCache) mergeInto(working *Attributes, flatten flattenFunc) error {
	for _, key := range c.keys {
		patch, err := flatten(key, c.values[key], working.Clone())
		if err != nil {
			return err
		}
		working.Merge(patch)
	}
	return nil
}
