package catalog

import (
	"context"

	"github.com/qhuube/vatreport/internal/core"
	"github.com/qhuube/vatreport/internal/schema"
)

// Static is a fixed in-memory catalog. It backs development setups without
// a database and keeps handler tests hermetic.
type Static struct {
	FieldList []schema.Field
	Rules     []core.VATRule
	RateTable core.RateTable
}

// Fields returns the configured field list, or the built-in defaults when
// none were provided.
func (s *Static) Fields(context.Context) ([]schema.Field, error) {
	if len(s.FieldList) == 0 {
		return schema.DefaultFields, nil
	}
	return s.FieldList, nil
}

func (s *Static) VATRules(context.Context) ([]core.VATRule, error) {
	return s.Rules, nil
}

func (s *Static) Rates(context.Context) (core.RateTable, error) {
	if s.RateTable == nil {
		return core.RateTable{}, nil
	}
	return s.RateTable, nil
}
