package percolate

import "log/slog"

// fieldValueKey is the posting-list key: one bitmap per distinct
// (field, value) pair.
type fieldValueKey struct {
	field string
	value string
}

// InvertedIndex maps (field, value) to the sorted bitmap of document
// ids carrying that pair, plus a tombstone set for soft deletes.
// Reclamation of tombstoned postings is out of scope (§1); every
// reader subtracts tombstones before returning.
type InvertedIndex struct {
	postings   map[fieldValueKey]*Bitmap
	tombstones *Bitmap
	nextDocID  uint32
}

// NewInvertedIndex returns an empty index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		postings:   make(map[fieldValueKey]*Bitmap),
		tombstones: NewBitmap(),
	}
}

// IndexDocument assigns the next dense, monotonic DocId, inserts it
// into the posting list of every (field, value) pair the document
// carries, and returns the new id.
func (idx *InvertedIndex) IndexDocument(d *Document) uint32 {
	docID := idx.nextDocID
	idx.nextDocID++

	for _, fv := range d.FieldValues() {
		key := fieldValueKey{field: fv.Field, value: fv.Value}
		bm, ok := idx.postings[key]
		if !ok {
			bm = NewBitmap()
			idx.postings[key] = bm
		}
		bm.Insert(docID)
	}

	slog.Info("indexing document", slog.Any("docID", docID))
	return docID
}

// DocsFrom returns the posting list for (field, value), already net
// of tombstones. An absent key yields an empty bitmap, never nil.
func (idx *InvertedIndex) DocsFrom(field, value string) *Bitmap {
	key := fieldValueKey{field: field, value: value}
	bm, ok := idx.postings[key]
	if !ok {
		return NewBitmap()
	}
	if idx.tombstones.IsEmpty() {
		return bm
	}
	return bm.AndNot(idx.tombstones)
}

// Unindex soft-deletes docID: posting lists are left untouched, and
// readers will no longer see it. Returns false if docID was already
// tombstoned (a no-op).
func (idx *InvertedIndex) Unindex(docID uint32) bool {
	if idx.tombstones.Contains(docID) {
		return false
	}
	idx.tombstones.Insert(docID)
	return true
}

// Len returns the number of documents ever indexed (tombstoned or not).
func (idx *InvertedIndex) Len() int {
	return int(idx.nextDocID)
}

// IsEmpty reports whether no document has ever been indexed.
func (idx *InvertedIndex) IsEmpty() bool {
	return idx.nextDocID == 0
}
