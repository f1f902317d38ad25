package query

import "net/url"

// Mode selects which raw input drives filtering: per-field form values
// (Simple) or a single advanced-search string (Advanced).
type Mode int

const (
	Simple Mode = iota
	Advanced
)

func (m Mode) String() string {
	if m == Advanced {
		return "advanced"
	}
	return "simple"
}

// Toggle is the two-state switch between simple and advanced search. It
// never parses anything itself; it only decides which input is fed to the
// parser and preserves the advanced text across switches.
//
// Switching to Simple stashes the advanced text aside and clears the
// visible input; switching back restores it verbatim. No conversion between
// simple field values and the advanced string ever happens.
type Toggle struct {
	mode   Mode
	text   string // visible advanced input
	stored string // stashed advanced text while in Simple mode
}

// NewToggle starts in Advanced when a previously stored advanced string is
// non-empty, preserving the user's search across reloads. Otherwise it
// starts in Simple.
func NewToggle(stored string) *Toggle {
	if stored != "" {
		return &Toggle{mode: Advanced, text: stored}
	}
	return &Toggle{mode: Simple}
}

func (t *Toggle) Mode() Mode {
	return t.mode
}

// Text returns the visible advanced input. It is empty while in Simple mode.
func (t *Toggle) Text() string {
	return t.text
}

// Stored returns the stashed advanced text kept while in Simple mode.
func (t *Toggle) Stored() string {
	return t.stored
}

// SetText replaces the visible advanced input. It has no effect in Simple
// mode, where the advanced input is hidden.
func (t *Toggle) SetText(s string) {
	if t.mode == Advanced {
		t.text = s
	}
}

func (t *Toggle) SwitchToAdvanced() {
	if t.mode == Advanced {
		return
	}
	t.mode = Advanced
	t.text = t.stored
	t.stored = ""
}

func (t *Toggle) SwitchToSimple() {
	if t.mode == Simple {
		return
	}
	t.mode = Simple
	t.stored = t.text
	t.text = ""
}

// Parse feeds the active mode's input to the parser: the advanced text in
// Advanced mode, the submitted form values in Simple mode.
func (t *Toggle) Parse(fields *FieldSet, values url.Values) (*Query, error) {
	if t.mode == Advanced {
		return Parse(fields, t.text)
	}
	return FromValues(fields, values)
}
