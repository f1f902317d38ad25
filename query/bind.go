package query

import "net/url"

// FromValues builds a Query from simple-mode form values. Each declared
// field with a non-empty submitted value becomes a clause with the implicit
// "=" operator, validated by the same rules the parser applies. Parameters
// that do not name a declared field are ignored. Fields are bound in
// declaration order.
func FromValues(fields *FieldSet, values url.Values) (*Query, error) {
	q := &Query{}
	for _, field := range fields.Fields() {
		raw := values.Get(field.Name)
		if raw == "" {
			continue
		}
		value, err := field.ParseValue(raw)
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, Clause{
			Field: field.Name,
			Op:    OpEqual,
			Raw:   raw,
			Value: value,
		})
	}
	return q, nil
}
