package types

// Write is a single pending change
type Write struct {
	Key     string
	Value   []byte
	Deleted bool
}

// Batch collects the writes of one call. The last write to a key wins.
type Batch struct {
	order   []string
	pending map[string][]byte
	deleted map[string]bool
}

func NewBatch() *Batch {
	return &Batch{
		pending: make(map[string][]byte),
		deleted: make(map[string]bool),
	}
}

func (b *Batch) touch(key string) {
	if _, ok := b.pending[key]; ok {
		return
	}
	if b.deleted[key] {
		return
	}
	b.order = append(b.order, key)
}

// Put records a value for key
func (b *Batch) Put(key string, value []byte) {
	b.touch(key)
	delete(b.deleted, key)
	b.pending[key] = value
}

// Delete records the removal of key
func (b *Batch) Delete(key string) {
	b.touch(key)
	delete(b.pending, key)
	b.deleted[key] = true
}

// Lookup returns the pending state of key.
// found is false when the batch has no opinion about key.
func (b *Batch) Lookup(key string) (value []byte, deleted bool, found bool) {
	if b.deleted[key] {
		return nil, true, true
	}
	v, ok := b.pending[key]
	return v, false, ok
}

// Writes returns the changes in first-touch order
func (b *Batch) Writes() []Write {
	out := make([]Write, 0, len(b.order))
	for _, key := range b.order {
		if b.deleted[key] {
			out = append(out, Write{Key: key, Deleted: true})
			continue
		}
		out = append(out, Write{Key: key, Value: b.pending[key]})
	}
	return out
}

func (b *Batch) Len() int {
	return len(b.order)
}
