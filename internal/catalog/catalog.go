// Package catalog is the Postgres-backed source of validation and
// enrichment reference data: the expected header fields with their aliases,
// the VAT rules keyed by product type and country, and the daily EUR
// exchange rate observations.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qhuube/vatreport/internal/core"
	"github.com/qhuube/vatreport/internal/schema"
)

// Repository reads and writes the reference tables. It satisfies
// core.Catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository over a shared connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the reference tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS header_fields (
			id          SERIAL PRIMARY KEY,
			value       TEXT NOT NULL UNIQUE,
			label       TEXT NOT NULL,
			field_type  TEXT NOT NULL DEFAULT 'string',
			aliases     TEXT[] NOT NULL DEFAULT '{}',
			position    INT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS vat_rules (
			id                SERIAL PRIMARY KEY,
			product_type      TEXT NOT NULL,
			country           TEXT NOT NULL,
			vat_rate          DOUBLE PRECISION NOT NULL,
			shipping_vat_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			category          TEXT NOT NULL DEFAULT '',
			UNIQUE (product_type, country)
		);
		CREATE TABLE IF NOT EXISTS currency_rates (
			rate_date  DATE NOT NULL,
			currency   TEXT NOT NULL,
			rate       DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (rate_date, currency)
		);`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// Fields returns the configured header fields in position order. An empty
// result means the caller should fall back to the built-in defaults.
func (r *Repository) Fields(ctx context.Context) ([]schema.Field, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT value, label, field_type, aliases
		 FROM header_fields
		 ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query header fields: %w", err)
	}
	defer rows.Close()

	fields := make([]schema.Field, 0)
	for rows.Next() {
		var f schema.Field
		var fieldType string
		if err := rows.Scan(&f.Value, &f.Label, &fieldType, &f.Aliases); err != nil {
			return nil, fmt.Errorf("scan header field: %w", err)
		}
		f.Type = schema.ParseFieldType(fieldType)
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read header fields: %w", err)
	}
	return fields, nil
}

// VATRules returns all VAT rules.
func (r *Repository) VATRules(ctx context.Context) ([]core.VATRule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_type, country, vat_rate, shipping_vat_rate, category
		 FROM vat_rules`)
	if err != nil {
		return nil, fmt.Errorf("query vat rules: %w", err)
	}
	defer rows.Close()

	rules := make([]core.VATRule, 0)
	for rows.Next() {
		var rule core.VATRule
		if err := rows.Scan(&rule.ProductType, &rule.Country, &rule.VATRate, &rule.ShippingVATRate, &rule.Category); err != nil {
			return nil, fmt.Errorf("scan vat rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read vat rules: %w", err)
	}
	return rules, nil
}

// Rates returns every stored rate observation as a date-indexed table.
func (r *Repository) Rates(ctx context.Context) (core.RateTable, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(rate_date, 'YYYY-MM-DD'), currency, rate
		 FROM currency_rates`)
	if err != nil {
		return nil, fmt.Errorf("query currency rates: %w", err)
	}
	defer rows.Close()

	observations := make([]core.RateObservation, 0)
	for rows.Next() {
		var obs core.RateObservation
		if err := rows.Scan(&obs.Date, &obs.Currency, &obs.Rate); err != nil {
			return nil, fmt.Errorf("scan currency rate: %w", err)
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read currency rates: %w", err)
	}
	return core.BuildRateTable(observations), nil
}

// UpsertRates stores a batch of rate observations, replacing any existing
// value for the same date and currency. Used by the rate refresher.
func (r *Repository) UpsertRates(ctx context.Context, observations []core.RateObservation) (int, error) {
	if len(observations) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, obs := range observations {
		batch.Queue(
			`INSERT INTO currency_rates (rate_date, currency, rate)
			 VALUES ($1::date, $2, $3)
			 ON CONFLICT (rate_date, currency) DO UPDATE SET rate = EXCLUDED.rate`,
			obs.Date, obs.Currency, obs.Rate)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	stored := 0
	for range observations {
		if _, err := results.Exec(); err != nil {
			return stored, fmt.Errorf("upsert currency rate: %w", err)
		}
		stored++
	}
	return stored, nil
}

// LatestRateDate reports the most recent stored observation date per
// currency, used to bound refresh windows. Currencies with no rows are
// absent from the map.
func (r *Repository) LatestRateDate(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT currency, to_char(MAX(rate_date), 'YYYY-MM-DD')
		 FROM currency_rates
		 GROUP BY currency`)
	if err != nil {
		return nil, fmt.Errorf("query latest rate dates: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]string)
	for rows.Next() {
		var currency, date string
		if err := rows.Scan(&currency, &date); err != nil {
			return nil, fmt.Errorf("scan latest rate date: %w", err)
		}
		latest[currency] = date
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read latest rate dates: %w", err)
	}
	return latest, nil
}
