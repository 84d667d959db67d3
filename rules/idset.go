package rules

import "sort"

// IDSet is a set of notification ids.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	s.Add(ids...)
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts ids and returns how many were not already present.
func (s IDSet) Add(ids ...string) int {
	n := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s[id]; !ok {
			s[id] = struct{}{}
			n++
		}
	}
	return n
}

func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
