package handle

import (
	"context"
	"iter"
)

// DirEntry is one (name, handle) pair of a directory listing.
type DirEntry struct {
	Name   string
	Handle Entry
}

// Sequence is a lazy, restartable listing of directory children. Every call
// to All starts a fresh enumeration.
type Sequence struct {
	produce func(ctx context.Context, yield func(DirEntry) bool) error
	size    int
}

// FiniteSequence lists a fixed set of entries.
func FiniteSequence(entries []DirEntry) Sequence {
	snapshot := append([]DirEntry(nil), entries...)
	return Sequence{
		size: len(snapshot),
		produce: func(ctx context.Context, yield func(DirEntry) bool) error {
			for _, e := range snapshot {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !yield(e) {
					return nil
				}
			}
			return nil
		},
	}
}

// HostSequence lists entries as the host produces them; the length is not
// known up front. produce must stop when yield returns false.
func HostSequence(produce func(ctx context.Context, yield func(DirEntry) bool) error) Sequence {
	return Sequence{produce: produce, size: -1}
}

// Len returns the number of entries when it is known without enumerating.
func (s Sequence) Len() (int, bool) {
	if s.produce == nil {
		return 0, true
	}
	if s.size < 0 {
		return 0, false
	}
	return s.size, true
}

// All enumerates the entries. A host failure is yielded once as the final
// element with a zero DirEntry.
func (s Sequence) All(ctx context.Context) iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		if s.produce == nil {
			return
		}
		stopped := false
		err := s.produce(ctx, func(e DirEntry) bool {
			if !yield(e, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(DirEntry{}, err)
		}
	}
}

// Keys enumerates entry names.
func (s Sequence) Keys(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for e, err := range s.All(ctx) {
			if !yield(e.Name, err) {
				return
			}
		}
	}
}

// Values enumerates entry handles.
func (s Sequence) Values(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for e, err := range s.All(ctx) {
			if !yield(e.Handle, err) {
				return
			}
		}
	}
}

// Collect drains the sequence.
func (s Sequence) Collect(ctx context.Context) ([]DirEntry, error) {
	var out []DirEntry
	for e, err := range s.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}
