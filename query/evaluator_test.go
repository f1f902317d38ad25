package query

import (
	"testing"
)

func matchOne(t *testing.T, fields *FieldSet, input, record string) bool {
	t.Helper()
	q, err := Parse(fields, input)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	match, err := q.MatchFunc(fields)([]byte(record))
	if err != nil {
		t.Fatalf("MatchFunc error: %v", err)
	}
	return match
}

func TestMatchClauses(t *testing.T) {
	fields := testFields()
	record := `{"name":"John Smith","age":34,"created":"2014-03-07","active":true,"state":"open"}`

	testCases := []struct {
		input string
		match bool
	}{
		{`name="john smith"`, true}, // equality is case-insensitive
		{`name=john`, false},
		{`name:smith`, true},
		{`name:SMITH`, true},
		{`name!=jane`, true},
		{`age=34`, true},
		{`age>30`, true},
		{`age<=34`, true},
		{`age<34`, false},
		{`created=2014-03-07`, true},
		{`created>2014-01-01 created<2015-01-01`, true},
		{`created>=2014-03-08`, false},
		{`active=true`, true},
		{`active!=true`, false},
		{`state=open`, true},
		{`age>30 name:smith state=open`, true},
		{`age>30 name:smith state=closed`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := matchOne(t, fields, tc.input, record); got != tc.match {
				t.Errorf("Expected match=%v, got %v", tc.match, got)
			}
		})
	}
}

func TestMatchEmptyQueryMatchesEverything(t *testing.T) {
	fields := testFields()
	if !matchOne(t, fields, ``, `{"name":"anyone"}`) {
		t.Error("Expected empty query to match")
	}
	if !matchOne(t, fields, ``, `{}`) {
		t.Error("Expected empty query to match empty record")
	}
}

func TestMatchMissingFieldFailsClause(t *testing.T) {
	fields := testFields()
	if matchOne(t, fields, `age>10`, `{"name":"no age here"}`) {
		t.Error("Expected clause on missing field not to match")
	}
}

func TestMatchNestedAttr(t *testing.T) {
	fields := NewFieldSet().Add(Field{Name: "city", Type: Text, Attr: "address.city"})

	record := `{"address":{"city":"Waterloo"}}`
	if !matchOne(t, fields, `city=waterloo`, record) {
		t.Error("Expected nested attribute to match")
	}
	if matchOne(t, fields, `city=toronto`, record) {
		t.Error("Expected nested attribute not to match different value")
	}
	if matchOne(t, fields, `city=waterloo`, `{"address":"not an object"}`) {
		t.Error("Expected non-object intermediate to fail the clause")
	}
}

func TestMatchWrongValueType(t *testing.T) {
	fields := testFields()
	// age is a number in the schema but a string in this record
	if matchOne(t, fields, `age>10`, `{"age":"thirty"}`) {
		t.Error("Expected type mismatch not to match")
	}
}

func TestMatchBadJSON(t *testing.T) {
	fields := testFields()
	q, err := Parse(fields, `age>10`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.MatchFunc(fields)([]byte(`{not json`)); err == nil {
		t.Error("Expected error for malformed record, got nil")
	}
}
