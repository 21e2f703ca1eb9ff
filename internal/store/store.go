// Package store persists companies and matches for the HTTP read/delete
// surface, backed by either Postgres or embedded SQLite.
package store

import (
	"context"
	"time"
)

// Company is a persisted company record, assigned an ID on first
// insertion (via upsert keyed on source name + source id).
type Company struct {
	ID         int64  `json:"id"`
	SourceID   string `json:"source_id"`
	SourceName string `json:"source_name"`
	Name       string `json:"name"`
	Website    string `json:"website,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Match is a persisted comparison result between two companies.
type Match struct {
	ID              int64     `json:"id"`
	CompanyAID      int64     `json:"company_a_id"`
	CompanyBID      int64     `json:"company_b_id"`
	Score           float64   `json:"score"`
	SuccessCriteria []string  `json:"success_criteria"`
	CreatedAt       time.Time `json:"created_at"`
}

// MatchFilter narrows ListMatches. A nil CompanyID returns matches
// involving any company.
type MatchFilter struct {
	CompanyID *int64
	Limit     int
	Offset    int
}

// Store is the persistence interface the HTTP surface reads and writes
// through. Deletion is always a hard delete — this system keeps no
// history of superseded match verdicts.
type Store interface {
	// UpsertCompany inserts a company, or overwrites the other fields of the
	// existing row for the same source name and source id, and returns the
	// row's ID.
	UpsertCompany(ctx context.Context, c Company) (int64, error)
	GetCompany(ctx context.Context, id int64) (*Company, error)
	ListCompanies(ctx context.Context, limit, offset int) ([]Company, error)

	InsertMatch(ctx context.Context, m Match) (int64, error)
	GetMatch(ctx context.Context, id int64) (*Match, error)
	ListMatches(ctx context.Context, filter MatchFilter) ([]Match, error)
	DeleteMatch(ctx context.Context, id int64) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
