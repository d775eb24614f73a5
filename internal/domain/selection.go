package domain

// Selection is an ordered set of selected asset public IDs. Order is
// insertion order; adding an already-selected ID is a no-op, so collage grids
// and animation frames render in the order the user picked.
type Selection struct {
	ids []string
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *Selection) Add(id string) {
	if id == "" || s.Contains(id) {
		return
	}
	s.ids = append(s.ids, id)
}

func (s *Selection) Remove(id string) {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

func (s *Selection) Contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (s *Selection) Clear() {
	s.ids = nil
}

func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// First returns the first selected ID, or an empty string when nothing is
// selected.
func (s *Selection) First() string {
	if s == nil || len(s.ids) == 0 {
		return ""
	}
	return s.ids[0]
}

// IDs returns a copy of the selection in insertion order.
func (s *Selection) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.ids...)
}
