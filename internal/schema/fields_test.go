package schema

import "testing"

func TestParseFieldType(t *testing.T) {
	cases := map[string]FieldType{
		"string":   TypeString,
		"int":      TypeInteger,
		"integer":  TypeInteger,
		"phone":    TypeInteger,
		"number":   TypeFloat,
		"float":    TypeFloat,
		"date":     TypeDate,
		"datetime": TypeDate,
		"bool":     TypeBoolean,
		"boolean":  TypeBoolean,
		"email":    TypeEmail,
		"url":      TypeURL,
		"json":     TypeJSON,
		" Float ":  TypeFloat,
		"":         TypeString,
		"mystery":  TypeString,
	}
	for input, want := range cases {
		if got := ParseFieldType(input); got != want {
			t.Errorf("ParseFieldType(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestDefaultFieldsWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range DefaultFields {
		if f.Value == "" || f.Label == "" {
			t.Errorf("field %+v missing value or label", f)
		}
		if seen[f.Value] {
			t.Errorf("duplicate field value %q", f.Value)
		}
		seen[f.Value] = true
	}
	for _, required := range []string{FieldOrderDate, FieldProductType, FieldCountry, FieldCurrency, FieldNetPrice, FieldShippingAmount} {
		if !seen[required] {
			t.Errorf("default fields missing %q", required)
		}
	}
}

func TestLabels(t *testing.T) {
	labels := Labels(DefaultFields)
	if labels[FieldOrderDate] != "Order Date" {
		t.Errorf("label for %s = %q", FieldOrderDate, labels[FieldOrderDate])
	}
	if len(labels) != len(DefaultFields) {
		t.Errorf("labels has %d entries, want %d", len(labels), len(DefaultFields))
	}
}
