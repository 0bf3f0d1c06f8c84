package project

import "sort"

// FrameRecord is one frame's serialized drawing state plus an optional
// raster thumbnail (PNG bytes). The Thumbnail may be empty.
type FrameRecord struct {
	FrameIndex   int
	DrawingState string
	Thumbnail    []byte
}

// Clone returns an independent copy of the record, including a copy of the
// thumbnail bytes.
func (r *FrameRecord) Clone() *FrameRecord {
	c := &FrameRecord{
		FrameIndex:   r.FrameIndex,
		DrawingState: r.DrawingState,
	}
	if len(r.Thumbnail) > 0 {
		c.Thumbnail = make([]byte, len(r.Thumbnail))
		copy(c.Thumbnail, r.Thumbnail)
	}
	return c
}

// FrameSet maps a frame index to its record. Keys are non-negative and
// unique; a record's FrameIndex always equals its map key.
type FrameSet map[int]*FrameRecord

// Clone returns a fully independent deep copy of the set.
func (fs FrameSet) Clone() FrameSet {
	out := make(FrameSet, len(fs))
	for idx, rec := range fs {
		out[idx] = rec.Clone()
	}
	return out
}

// Indices returns the frame indices in ascending order.
func (fs FrameSet) Indices() []int {
	indices := make([]int, 0, len(fs))
	for idx := range fs {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// FrameStore is the read/write surface over a FrameSet. It is used
// identically for the live set and for checkpoint sets. FrameStore is not
// safe for concurrent use; ProjectSession serializes access to it.
type FrameStore struct {
	frames FrameSet
}

// NewFrameStore creates an empty frame store.
func NewFrameStore() *FrameStore {
	return &FrameStore{frames: make(FrameSet)}
}

// Put inserts or overwrites the record at index. Negative indices are
// rejected silently; frame indices are non-negative by construction.
func (s *FrameStore) Put(index int, drawingState string, thumbnail []byte) {
	if index < 0 {
		return
	}
	s.frames[index] = &FrameRecord{
		FrameIndex:   index,
		DrawingState: drawingState,
		Thumbnail:    thumbnail,
	}
}

// Get returns the record at index, or nil if absent.
func (s *FrameStore) Get(index int) *FrameRecord {
	return s.frames[index]
}

// Remove deletes the record at index. Removing an absent index is a no-op.
func (s *FrameStore) Remove(index int) {
	delete(s.frames, index)
}

// Clear removes all records.
func (s *FrameStore) Clear() {
	s.frames = make(FrameSet)
}

// Len returns the number of records in the store.
func (s *FrameStore) Len() int {
	return len(s.frames)
}

// Indices returns the stored frame indices in ascending order.
func (s *FrameStore) Indices() []int {
	return s.frames.Indices()
}

// CloneAll returns a fully independent deep copy of the current set.
// The copy shares no records with the store.
func (s *FrameStore) CloneAll() FrameSet {
	return s.frames.Clone()
}

// ReplaceAll swaps the entire set for a deep copy of frames.
func (s *FrameStore) ReplaceAll(frames FrameSet) {
	s.frames = frames.Clone()
}

// Shift relabels every record whose index >= fromIndex by adding delta.
// Records are moved in an order that never overwrites a not-yet-moved
// record: descending for positive delta, ascending for negative. Records
// whose shifted index would be negative are dropped.
func (s *FrameStore) Shift(fromIndex, delta int) {
	if delta == 0 {
		return
	}

	indices := make([]int, 0, len(s.frames))
	for idx := range s.frames {
		if idx >= fromIndex {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	if delta > 0 {
		for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
			indices[i], indices[j] = indices[j], indices[i]
		}
	}

	for _, idx := range indices {
		rec := s.frames[idx]
		delete(s.frames, idx)

		target := idx + delta
		if target < 0 {
			continue
		}
		rec.FrameIndex = target
		s.frames[target] = rec
	}
}
