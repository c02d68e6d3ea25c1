// Package connectors reads report records out of external SQL
// databases. A named connection exposes one or more tables as sections
// of the schema registry; the record materializer reads them through
// the Connector interface instead of the records collection.
package connectors

import (
	"context"

	"crm-reports/internal/features/record"
)

const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
)

// ConnectionConfig declares one named external connection and the
// sections it exposes.
type ConnectionConfig struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"` // postgres | mysql
	Host     string           `json:"host"`
	Port     int              `json:"port"`
	Database string           `json:"database"`
	Username string           `json:"username"`
	Password string           `json:"password"`
	SSLMode  string           `json:"sslmode,omitempty"` // postgres only, defaults to disable
	Sections []SectionBinding `json:"sections"`
}

// SectionBinding maps one table of a connection onto a reportable
// section name.
type SectionBinding struct {
	Name         string `json:"name"`
	Display      string `json:"display_name,omitempty"`
	Table        string `json:"table"`
	DisplayField string `json:"display_field,omitempty"`
}

// QueryRequest describes one read against an external table.
type QueryRequest struct {
	Table   string
	Fields  []string            // empty selects every column
	Filters []record.FilterSpec // compiled to a WHERE clause
	Sort    []SortKey
	Limit   int64
	Offset  int64
}

// SortKey orders results by one column. Keys apply in slice order so
// the generated SQL is deterministic.
type SortKey struct {
	Field string
	Desc  bool
}

// QueryResponse carries the rows of one query.
type QueryResponse struct {
	Data       []map[string]interface{}
	TotalCount int64
}

// Column is one introspected table column.
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// Connector is implemented by every external data source.
type Connector interface {
	// Connect establishes the connection declared at construction.
	Connect(ctx context.Context) error

	// Disconnect closes the connection.
	Disconnect(ctx context.Context) error

	// Query executes a read and returns its rows.
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)

	// GetSchema introspects the columns of one table.
	GetSchema(ctx context.Context, table string) ([]Column, error)

	// TestConnection reports whether the connection is still usable.
	TestConnection(ctx context.Context) error

	// GetType returns the connection type, e.g. "postgres".
	GetType() string
}
