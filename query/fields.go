package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type FieldType int

const (
	Text FieldType = iota
	Number
	Date
	Boolean
	Choice
)

func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Number:
		return "number"
	case Date:
		return "date"
	case Boolean:
		return "boolean"
	case Choice:
		return "choice"
	}
	return "unknown"
}

// FieldTypeFromString is the inverse of FieldType.String. It is used when
// loading a schema from JSON.
func FieldTypeFromString(s string) (FieldType, error) {
	switch s {
	case "text":
		return Text, nil
	case "number":
		return Number, nil
	case "date":
		return Date, nil
	case "boolean":
		return Boolean, nil
	case "choice":
		return Choice, nil
	}
	return 0, fmt.Errorf("unknown field type %q", s)
}

// Field declares one searchable field. Name is what users type in queries.
// Attr is the dot-separated path to the value inside a record; it defaults
// to Name. Choices is consulted only for Choice fields.
type Field struct {
	Name    string
	Type    FieldType
	Attr    string
	Choices []string
}

func (f *Field) attrPath() []string {
	attr := f.Attr
	if attr == "" {
		attr = f.Name
	}
	return strings.Split(attr, ".")
}

// Allows reports whether the operator may be applied to this field.
// Substring match only makes sense on text; choices are matched exactly and
// only with "=".
func (f *Field) Allows(op Operator) bool {
	switch f.Type {
	case Text:
		return true
	case Number, Date:
		return op != OpContains
	case Boolean:
		return op == OpEqual || op == OpNotEqual
	case Choice:
		return op == OpEqual
	}
	return false
}

// ParseValue validates a literal against the field's type and returns the
// typed value (string, float64, time.Time or bool). The returned error is
// always a *Error with kind InvalidLiteral.
func (f *Field) ParseValue(literal string) (interface{}, error) {
	invalid := &Error{Kind: InvalidLiteral, Field: f.Name, Literal: literal}

	switch f.Type {
	case Text:
		return literal, nil
	case Number:
		v, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return nil, invalid
		}
		return v, nil
	case Date:
		v, err := time.Parse("2006-01-02", literal)
		if err != nil {
			return nil, invalid
		}
		return v, nil
	case Boolean:
		switch strings.ToLower(literal) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, invalid
	case Choice:
		for _, c := range f.Choices {
			if c == literal {
				return literal, nil
			}
		}
		return nil, invalid
	}
	return nil, invalid
}

// FieldSet is an ordered registry of Fields. Declaration order is
// preserved; it determines the order simple-mode values are bound in.
type FieldSet struct {
	order  []string
	byName map[string]*Field
}

func NewFieldSet() *FieldSet {
	return &FieldSet{byName: make(map[string]*Field)}
}

// Add registers a field. Redeclaring a name is a programming error.
func (fs *FieldSet) Add(f Field) *FieldSet {
	if _, exists := fs.byName[f.Name]; exists {
		panic(fmt.Sprintf("field %q declared twice", f.Name))
	}
	copied := f
	fs.byName[f.Name] = &copied
	fs.order = append(fs.order, f.Name)
	return fs
}

func (fs *FieldSet) AddText(name string) *FieldSet {
	return fs.Add(Field{Name: name, Type: Text})
}

func (fs *FieldSet) AddNumber(name string) *FieldSet {
	return fs.Add(Field{Name: name, Type: Number})
}

func (fs *FieldSet) AddDate(name string) *FieldSet {
	return fs.Add(Field{Name: name, Type: Date})
}

func (fs *FieldSet) AddBoolean(name string) *FieldSet {
	return fs.Add(Field{Name: name, Type: Boolean})
}

func (fs *FieldSet) AddChoice(name string, choices ...string) *FieldSet {
	return fs.Add(Field{Name: name, Type: Choice, Choices: choices})
}

func (fs *FieldSet) Lookup(name string) (*Field, bool) {
	f, ok := fs.byName[name]
	return f, ok
}

// Fields returns the fields in declaration order.
func (fs *FieldSet) Fields() []*Field {
	result := make([]*Field, len(fs.order))
	for i, name := range fs.order {
		result[i] = fs.byName[name]
	}
	return result
}

func (fs *FieldSet) Len() int {
	return len(fs.order)
}

type fieldJSON struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Attr    string   `json:"attr,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

func (fs *FieldSet) MarshalJSON() ([]byte, error) {
	out := make([]fieldJSON, 0, len(fs.order))
	for _, f := range fs.Fields() {
		out = append(out, fieldJSON{
			Name:    f.Name,
			Type:    f.Type.String(),
			Attr:    f.Attr,
			Choices: f.Choices,
		})
	}
	return json.Marshal(out)
}

func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	var in []fieldJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	fs.order = nil
	fs.byName = make(map[string]*Field)
	for _, fj := range in {
		typ, err := FieldTypeFromString(fj.Type)
		if err != nil {
			return err
		}
		fs.Add(Field{Name: fj.Name, Type: typ, Attr: fj.Attr, Choices: fj.Choices})
	}
	return nil
}
