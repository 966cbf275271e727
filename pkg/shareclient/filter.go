package shareclient

// Selection is the viewer-side category narrowing over an already
// server-scoped document list. It is a pure view filter: an empty selection
// shows everything the token allows, and no selection can reveal a document
// the resolver did not return.
type Selection struct {
	chosen map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{chosen: make(map[string]struct{})}
}

// Toggle flips a category in and out of the selection.
func (s *Selection) Toggle(category string) {
	if _, ok := s.chosen[category]; ok {
		delete(s.chosen, category)
		return
	}
	s.chosen[category] = struct{}{}
}

// Clear empties the selection, restoring the unfiltered view.
func (s *Selection) Clear() {
	s.chosen = make(map[string]struct{})
}

func (s *Selection) IsEmpty() bool {
	return len(s.chosen) == 0
}

func (s *Selection) Has(category string) bool {
	_, ok := s.chosen[category]
	return ok
}

// Categories returns the selected categories, order unspecified.
func (s *Selection) Categories() []string {
	result := make([]string, 0, len(s.chosen))
	for category := range s.chosen {
		result = append(result, category)
	}
	return result
}

// Apply returns the visible subset of docs: everything when the selection is
// empty, otherwise only documents whose category is selected.
func (s *Selection) Apply(docs []Document) []Document {
	if s.IsEmpty() {
		result := make([]Document, len(docs))
		copy(result, docs)
		return result
	}
	result := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if s.Has(doc.Category) {
			result = append(result, doc)
		}
	}
	return result
}
