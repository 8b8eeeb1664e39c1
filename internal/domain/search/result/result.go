package result

// Result is a single search hit.
type Result struct {
	id     string
	title  string
	fields map[string]string
}

// New creates a search result.
func New(id, title string, fields map[string]string) Result {
	return Result{id: id, title: title, fields: fields}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Title returns the display title, falling back to the identifier.
func (r *Result) Title() string {
	if r.title == "" {
		return r.id
	}
	return r.title
}

// Fields returns the remaining stored fields.
func (r *Result) Fields() map[string]string { return r.fields }

// Field returns a single stored field.
func (r *Result) Field(name string) string { return r.fields[name] }

// Page is one page of hits out of Total matches.
// Last is the highest page that may be requested; 0 means unbounded.
type Page struct {
	Total  int
	Number int
	Size   int
	Last   int
	Hits   []Result
}

// HasNext reports whether another requestable page follows.
func (p Page) HasNext() bool {
	if p.Last > 0 && p.Number >= p.Last {
		return false
	}
	return p.Number*p.Size < p.Total
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }
