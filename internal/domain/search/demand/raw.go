package demand

// CheckedValue is the literal form value a submitted facet checkbox carries.
const CheckedValue = "true"

// RawFilterState is the filter form state exactly as the browser submitted
// it: category -> value -> submitted string. It is not normalized and is
// deliberately independent of Demand, which is derived under its own rules.
type RawFilterState map[string]map[string]string

// IsChecked reports whether the checkbox for (category, value) was submitted
// checked. Lookup is literal: no case folding is applied here.
func (s RawFilterState) IsChecked(category, value string) bool {
	values, ok := s[category]
	if !ok {
		return false
	}
	return values[value] == CheckedValue
}

// Set records a submitted (category, value) pair.
func (s RawFilterState) Set(category, value, submitted string) {
	values, ok := s[category]
	if !ok {
		values = make(map[string]string)
		s[category] = values
	}
	values[value] = submitted
}
