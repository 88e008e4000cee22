package engine

import (
	"github.com/google/btree"
)

type bookEntryItem struct {
	entry BookEntry
}

func (i *bookEntryItem) Less(than btree.Item) bool {
	other := than.(*bookEntryItem)
	return CompareBookEntryKeys(i.entry.Side, i.entry.Key, other.entry.Key) < 0
}

// LimitBook is one side's ordered collection of book entries, keyed by the
// full priority tuple. Iteration order of the tree IS the matching and
// display priority order. All operations are pure: the underlying btree is
// cloned copy-on-write, so a returned LimitBook never aliases mutations of
// its parent.
type LimitBook struct {
	side Side
	tree *btree.BTree
}

func NewLimitBook(side Side) LimitBook {
	return LimitBook{side: side, tree: btree.New(32)}
}

func (b LimitBook) Side() Side {
	return b.side
}

func (b LimitBook) Len() int {
	return b.tree.Len()
}

func (b LimitBook) IsEmpty() bool {
	return b.tree.Len() == 0
}

// Add returns a new book with the entry inserted at its priority position.
// The caller guarantees key uniqueness via event id uniqueness.
func (b LimitBook) Add(entry BookEntry) LimitBook {
	tree := b.tree.Clone()
	tree.ReplaceOrInsert(&bookEntryItem{entry: entry})
	return LimitBook{side: b.side, tree: tree}
}

func (b LimitBook) Remove(key BookEntryKey) LimitBook {
	tree := b.tree.Clone()
	tree.Delete(b.probe(key))
	return LimitBook{side: b.side, tree: tree}
}

func (b LimitBook) RemoveAll(entries []BookEntry) LimitBook {
	tree := b.tree.Clone()
	for _, entry := range entries {
		if entry.Side != b.side {
			continue
		}
		tree.Delete(b.probe(entry.Key))
	}
	return LimitBook{side: b.side, tree: tree}
}

// Update applies a post-trade snapshot to the resting entry it refers to:
// the entry is removed when fully traded, otherwise replaced with the new
// sizes and status.
func (b LimitBook) Update(side TradeSideEntry) LimitBook {
	key := side.ToBookEntryKey()
	existing, ok := b.Get(key)
	if !ok {
		return b
	}

	tree := b.tree.Clone()
	if side.Sizes.Available <= 0 {
		tree.Delete(b.probe(key))
	} else {
		existing.Sizes = side.Sizes
		existing.Status = side.Status
		tree.ReplaceOrInsert(&bookEntryItem{entry: existing})
	}
	return LimitBook{side: b.side, tree: tree}
}

func (b LimitBook) Get(key BookEntryKey) (BookEntry, bool) {
	item := b.tree.Get(b.probe(key))
	if item == nil {
		return BookEntry{}, false
	}
	return item.(*bookEntryItem).entry, true
}

func (b LimitBook) First() (BookEntry, bool) {
	item := b.tree.Min()
	if item == nil {
		return BookEntry{}, false
	}
	return item.(*bookEntryItem).entry, true
}

// Entries snapshots all entries in priority order.
func (b LimitBook) Entries() []BookEntry {
	entries := make([]BookEntry, 0, b.tree.Len())
	b.tree.Ascend(func(item btree.Item) bool {
		entries = append(entries, item.(*bookEntryItem).entry)
		return true
	})
	return entries
}

// Ascend walks entries in priority order until the callback returns false.
func (b LimitBook) Ascend(fn func(entry BookEntry) bool) {
	b.tree.Ascend(func(item btree.Item) bool {
		return fn(item.(*bookEntryItem).entry)
	})
}

func (b LimitBook) FindAll(pred func(entry BookEntry) bool) []BookEntry {
	var found []BookEntry
	b.tree.Ascend(func(item btree.Item) bool {
		entry := item.(*bookEntryItem).entry
		if pred(entry) {
			found = append(found, entry)
		}
		return true
	})
	return found
}

// probe builds a lookup item carrying just enough of an entry for Less to
// order it: the key and the book's side.
func (b LimitBook) probe(key BookEntryKey) btree.Item {
	return &bookEntryItem{entry: BookEntry{Key: key, Side: b.side}}
}
