package view

// LabelResolver looks up the display label of a backend column.
type LabelResolver interface {
	Lookup(column string) string
}

// LabelBridge exposes the label table to templates.
type LabelBridge struct {
	labels LabelResolver
}

// NewLabelBridge creates a LabelBridge.
func NewLabelBridge(labels LabelResolver) LabelBridge {
	return LabelBridge{labels: labels}
}

// LabelFor returns whatever the resolver returns for category, untouched.
func (b LabelBridge) LabelFor(category string) string {
	return b.labels.Lookup(category)
}
