package query

import (
	"encoding/json"
	"testing"
)

func TestFieldSetOrder(t *testing.T) {
	fs := NewFieldSet().AddText("b").AddNumber("a").AddText("c")

	names := []string{}
	for _, f := range fs.Fields() {
		names = append(names, f.Name)
	}

	expected := []string{"b", "a", "c"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("Expected order %v, got %v", expected, names)
		}
	}
}

func TestFieldSetDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate field name")
		}
	}()
	NewFieldSet().AddText("a").AddNumber("a")
}

func TestOperatorPermissions(t *testing.T) {
	testCases := []struct {
		field   Field
		op      Operator
		allowed bool
	}{
		{Field{Name: "t", Type: Text}, OpContains, true},
		{Field{Name: "t", Type: Text}, OpLess, true},
		{Field{Name: "n", Type: Number}, OpContains, false},
		{Field{Name: "n", Type: Number}, OpLessEqual, true},
		{Field{Name: "d", Type: Date}, OpContains, false},
		{Field{Name: "d", Type: Date}, OpGreaterEqual, true},
		{Field{Name: "b", Type: Boolean}, OpLess, false},
		{Field{Name: "b", Type: Boolean}, OpNotEqual, true},
		{Field{Name: "c", Type: Choice}, OpEqual, true},
		{Field{Name: "c", Type: Choice}, OpNotEqual, false},
		{Field{Name: "c", Type: Choice}, OpContains, false},
	}

	for _, tc := range testCases {
		if got := tc.field.Allows(tc.op); got != tc.allowed {
			t.Errorf("%s field, operator %q: expected %v, got %v", tc.field.Type, tc.op, tc.allowed, got)
		}
	}
}

func TestParseValueNumber(t *testing.T) {
	f := Field{Name: "age", Type: Number}

	v, err := f.ParseValue("12.5")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.(float64) != 12.5 {
		t.Errorf("Expected 12.5, got %v", v)
	}

	if _, err := f.ParseValue("twelve"); err == nil {
		t.Error("Expected error for non-numeric literal, got nil")
	}
}

func TestParseValueChoice(t *testing.T) {
	f := Field{Name: "state", Type: Choice, Choices: []string{"new", "open"}}

	if _, err := f.ParseValue("open"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := f.ParseValue("closed")
	if err == nil {
		t.Fatal("Expected error for unknown choice, got nil")
	}
	qerr := err.(*Error)
	if qerr.Kind != InvalidLiteral || qerr.Field != "state" || qerr.Literal != "closed" {
		t.Errorf("Unexpected error details: %+v", qerr)
	}
}

func TestFieldSetJSONRoundTrip(t *testing.T) {
	fs := NewFieldSet().
		AddText("name").
		AddChoice("state", "new", "open").
		Add(Field{Name: "city", Type: Text, Attr: "address.city"})

	data, err := json.Marshal(fs)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	loaded := NewFieldSet()
	if err := json.Unmarshal(data, loaded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if loaded.Len() != 3 {
		t.Fatalf("Expected 3 fields, got %d", loaded.Len())
	}
	city, ok := loaded.Lookup("city")
	if !ok {
		t.Fatal("Expected city field after round trip")
	}
	if city.Attr != "address.city" {
		t.Errorf("Expected attr %q, got %q", "address.city", city.Attr)
	}
	state, _ := loaded.Lookup("state")
	if len(state.Choices) != 2 {
		t.Errorf("Expected 2 choices, got %v", state.Choices)
	}
}
