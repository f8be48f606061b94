package core

// Context is an ordered collection of fields. Insertion order is preserved;
// setting an existing key replaces its value in place without changing its
// position. The zero value is an empty context ready for use.
//
// A Context owns its backing slice. Clone and Merge always return a context
// with independent storage, so mutating a child is never observable from
// the value it was derived from.
type Context struct {
	fields []Field
}

// NewContext creates a context from the given fields, applying last-wins
// semantics on duplicate keys.
func NewContext(fields ...Field) Context {
	var c Context
	for _, f := range fields {
		c.Set(f)
	}
	return c
}

// Len returns the number of distinct keys.
func (c Context) Len() int {
	return len(c.fields)
}

// Set adds a field, replacing any existing field with the same key.
func (c *Context) Set(f Field) {
	for i := range c.fields {
		if c.fields[i].Key == f.Key {
			c.fields[i] = f
			return
		}
	}
	c.fields = append(c.fields, f)
}

// Get returns the field for key and whether it is present.
func (c Context) Get(key string) (Field, bool) {
	for _, f := range c.fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Fields returns the backing slice in insertion order. The slice is shared;
// callers must not modify it. Formatters iterate it directly.
func (c Context) Fields() []Field {
	return c.fields
}

// Clone returns a context with an independent copy of the backing slice.
func (c Context) Clone() Context {
	if len(c.fields) == 0 {
		return Context{}
	}
	dup := make([]Field, len(c.fields))
	copy(dup, c.fields)
	return Context{fields: dup}
}

// Merge returns a new context containing the receiver's fields overwritten
// key-by-key with the given fields. The receiver is unchanged.
func (c Context) Merge(fields ...Field) Context {
	merged := c.Clone()
	for _, f := range fields {
		merged.Set(f)
	}
	return merged
}

// MergeContext returns a new context containing the receiver's fields
// overwritten key-by-key with other's fields, in other's order.
func (c Context) MergeContext(other Context) Context {
	merged := c.Clone()
	for _, f := range other.fields {
		merged.Set(f)
	}
	return merged
}
