// Package schema defines the canonical field catalog used to interpret
// merchant order uploads.
//
// A canonical field is the stable internal name for a business concept
// (e.g. net_price), independent of how the source file labeled its column.
// Each field carries a human label, a declared primitive type, and the list
// of raw header spellings (aliases) that resolve to it. The catalog is
// normally loaded from the database per request; DefaultFields is the
// built-in configuration used when the catalog is empty.
package schema

import "strings"

// FieldType is the declared primitive type of a canonical field.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInteger
	TypeFloat
	TypeDate
	TypeBoolean
	TypeEmail
	TypeURL
	TypeJSON
)

// String returns the user-facing name of the type, as shown in issue
// descriptions ("Invalid integer values in rows: ...").
func (t FieldType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeDate:
		return "date"
	case TypeBoolean:
		return "boolean"
	case TypeEmail:
		return "email"
	case TypeURL:
		return "url"
	case TypeJSON:
		return "json"
	default:
		return "string"
	}
}

// ParseFieldType maps a catalog type name to a FieldType. The catalog is
// edited by admins and has accumulated several spellings per type, so the
// mapping is deliberately permissive; anything unrecognized is a string.
func ParseFieldType(raw string) FieldType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "int", "integer", "phone":
		return TypeInteger
	case "number", "float":
		return TypeFloat
	case "date", "datetime":
		return TypeDate
	case "bool", "boolean":
		return TypeBoolean
	case "email":
		return TypeEmail
	case "url":
		return TypeURL
	case "json":
		return TypeJSON
	default:
		return TypeString
	}
}

// Field is one canonical field definition.
type Field struct {
	Value   string    // Stable identifier: "order_date", "net_price"
	Label   string    // Human label: "Order Date"
	Type    FieldType // Declared primitive type
	Aliases []string  // Accepted raw header spellings
}

// Well-known field identifiers the enrichment engine depends on.
const (
	FieldOrderDate      = "order_date"
	FieldProductType    = "product_type"
	FieldCountry        = "country"
	FieldCurrency       = "currency"
	FieldNetPrice       = "net_price"
	FieldShippingAmount = "shipping_amount"
)

// DefaultFields is the built-in canonical field configuration. Declaration
// order matters: when two fields' alias lists could claim the same input
// column, the field listed first wins.
var DefaultFields = []Field{
	{Value: FieldOrderDate, Label: "Order Date", Type: TypeDate,
		Aliases: []string{"Order Date", "Date", "Invoice Date"}},
	{Value: "order_id", Label: "Order ID", Type: TypeString,
		Aliases: []string{"Order Number", "Order ID", "Invoice No"}},
	{Value: "product_sku", Label: "Product SKU", Type: TypeString,
		Aliases: []string{"SKU", "Product SKU", "Item Code"}},
	{Value: "product_name", Label: "Product Name", Type: TypeString,
		Aliases: []string{"Product Name", "Item Name"}},
	{Value: "quantity", Label: "Quantity", Type: TypeInteger,
		Aliases: []string{"Quantity", "Qty"}},
	{Value: FieldProductType, Label: "Product Type", Type: TypeString,
		Aliases: []string{"Product Type", "Product Category", "Category"}},
	{Value: FieldCountry, Label: "Country", Type: TypeString,
		Aliases: []string{"Country", "Destination Country", "Customer Country"}},
	{Value: FieldCurrency, Label: "Currency", Type: TypeString,
		Aliases: []string{"Currency", "Currency Code"}},
	{Value: FieldNetPrice, Label: "Net Price", Type: TypeFloat,
		Aliases: []string{"Net Price", "Base Price", "Amount"}},
	{Value: FieldShippingAmount, Label: "Shipping Amount", Type: TypeFloat,
		Aliases: []string{"Shipping Amount", "SP Amount", "Shipping Amt"}},
	{Value: "customer_email", Label: "Customer Email", Type: TypeEmail,
		Aliases: []string{"Customer Email", "Email", "Buyer Email"}},
}

// Labels returns the value -> label map for a field set.
func Labels(fields []Field) map[string]string {
	labels := make(map[string]string, len(fields))
	for _, f := range fields {
		labels[f.Value] = f.Label
	}
	return labels
}
