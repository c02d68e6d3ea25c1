package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/features/record"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// identPattern is the only shape of identifier that may be spliced into
// SQL text. Everything else is rejected before a statement is built.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLConnector reads external Postgres and MySQL tables.
type SQLConnector struct {
	cfg ConnectionConfig
	db  *sql.DB
}

func NewSQLConnector(cfg ConnectionConfig) *SQLConnector {
	return &SQLConnector{cfg: cfg}
}

func (c *SQLConnector) Connect(ctx context.Context) error {
	driver, err := driverFor(c.cfg.Type)
	if err != nil {
		return err
	}

	dsn, err := c.dsn()
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open %s connection: %w", c.cfg.Type, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping %q: %w", c.cfg.Name, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	c.db = db
	return nil
}

func (c *SQLConnector) Disconnect(ctx context.Context) error {
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

func (c *SQLConnector) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if c.db == nil {
		return nil, fmt.Errorf("connection %q is not established", c.cfg.Name)
	}

	query, args, err := buildSelect(req, c.isPostgres())
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", req.Table, err)
	}
	defer rows.Close()

	data, err := rowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("read %s rows: %w", req.Table, err)
	}

	return &QueryResponse{Data: data, TotalCount: int64(len(data))}, nil
}

// GetSchema introspects one table through information_schema, columns
// in ordinal order.
func (c *SQLConnector) GetSchema(ctx context.Context, table string) ([]Column, error) {
	if c.db == nil {
		return nil, fmt.Errorf("connection %q is not established", c.cfg.Name)
	}

	var query string
	if c.isPostgres() {
		query = `
			SELECT column_name, data_type, is_nullable
			FROM information_schema.columns
			WHERE table_name = $1 AND table_schema = 'public'
			ORDER BY ordinal_position`
	} else {
		query = `
			SELECT column_name, data_type, is_nullable
			FROM information_schema.columns
			WHERE table_name = ? AND table_schema = DATABASE()
			ORDER BY ordinal_position`
	}

	rows, err := c.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan %s column: %w", table, err)
		}
		cols = append(cols, Column{Name: name, DataType: dataType, Nullable: nullable == "YES"})
	}
	return cols, rows.Err()
}

func (c *SQLConnector) TestConnection(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("connection %q is not established", c.cfg.Name)
	}
	return c.db.PingContext(ctx)
}

func (c *SQLConnector) GetType() string {
	return c.cfg.Type
}

func (c *SQLConnector) isPostgres() bool {
	return c.cfg.Type != TypeMySQL
}

func driverFor(connType string) (string, error) {
	switch connType {
	case TypePostgres, "postgresql":
		return "postgres", nil
	case TypeMySQL:
		return "mysql", nil
	}
	return "", apperr.Newf(apperr.TypeValidation, "unsupported connection type %q", connType)
}

func (c *SQLConnector) dsn() (string, error) {
	cfg := c.cfg
	if cfg.Host == "" || cfg.Database == "" || cfg.Username == "" {
		return "", apperr.Newf(apperr.TypeValidation,
			"connection %q needs host, database and username", cfg.Name)
	}

	port := cfg.Port
	if c.isPostgres() {
		if port == 0 {
			port = 5432
		}
		ssl := cfg.SSLMode
		if ssl == "" {
			ssl = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, port, cfg.Username, cfg.Password, cfg.Database, ssl), nil
	}

	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.Username, cfg.Password, cfg.Host, port, cfg.Database), nil
}

// buildSelect compiles the request into one SELECT statement. Field and
// sort identifiers are validated, filters fold into the WHERE clause,
// limit and offset close the statement.
func buildSelect(req QueryRequest, postgres bool) (string, []interface{}, error) {
	if !identPattern.MatchString(req.Table) {
		return "", nil, apperr.Newf(apperr.TypeValidation, "table %q is not a valid identifier", req.Table)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if len(req.Fields) == 0 {
		b.WriteString("*")
	} else {
		for i, f := range req.Fields {
			if !identPattern.MatchString(f) {
				return "", nil, apperr.Newf(apperr.TypeInvalidFieldReference,
					"column %q is not a valid identifier", f)
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f)
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(req.Table)

	where, args, err := buildWhere(req.Filters, postgres)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if len(req.Sort) > 0 {
		b.WriteString(" ORDER BY ")
		for i, key := range req.Sort {
			if !identPattern.MatchString(key.Field) {
				return "", nil, apperr.Newf(apperr.TypeInvalidFieldReference,
					"sort column %q is not a valid identifier", key.Field)
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(key.Field)
			if key.Desc {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	}

	if req.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", req.Limit)
	}
	if req.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", req.Offset)
	}

	return b.String(), args, nil
}

// buildWhere folds the specs left to right exactly like the Mongo
// compiler: the first surviving spec's connector is ignored, every
// later spec wraps the running condition with its own, and specs with
// an empty value are dropped before the fold.
func buildWhere(specs []record.FilterSpec, postgres bool) (string, []interface{}, error) {
	var running string
	var args []interface{}
	have := false

	for _, spec := range specs {
		if spec.Value == "" {
			continue
		}

		clause, arg, err := compileSpecSQL(spec, postgres, len(args)+1)
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)

		if !have {
			running = clause
			have = true
			continue
		}

		if strings.EqualFold(spec.Logic, "or") {
			running = "(" + running + " OR " + clause + ")"
		} else {
			running = "(" + running + " AND " + clause + ")"
		}
	}

	return running, args, nil
}

func compileSpecSQL(spec record.FilterSpec, postgres bool, argIndex int) (string, interface{}, error) {
	if !identPattern.MatchString(spec.Field) {
		return "", nil, apperr.Newf(apperr.TypeInvalidFieldReference,
			"filter references invalid column %q", spec.Field)
	}
	if !record.ValidOperator(spec.Operator) {
		return "", nil, apperr.Newf(apperr.TypeUnsupportedOperator,
			"unsupported filter operator %q", spec.Operator)
	}

	placeholder := "?"
	if postgres {
		placeholder = fmt.Sprintf("$%d", argIndex)
	}

	// Values stay strings; both servers infer the comparison type from
	// the column, which mirrors the coercion the Mongo path does.
	switch spec.Operator {
	case record.OpExact:
		return spec.Field + " = " + placeholder, spec.Value, nil
	case record.OpContains:
		like := "LIKE"
		if postgres {
			like = "ILIKE"
		}
		return spec.Field + " " + like + " " + placeholder, "%" + escapeLike(spec.Value) + "%", nil
	case record.OpGt:
		return spec.Field + " > " + placeholder, spec.Value, nil
	case record.OpLt:
		return spec.Field + " < " + placeholder, spec.Value, nil
	case record.OpGte:
		return spec.Field + " >= " + placeholder, spec.Value, nil
	case record.OpLte:
		return spec.Field + " <= " + placeholder, spec.Value, nil
	}
	// ValidOperator makes this unreachable
	return "", nil, apperr.Newf(apperr.TypeUnsupportedOperator, "unsupported filter operator %q", spec.Operator)
}

// escapeLike neutralizes LIKE wildcards in user input, the SQL
// counterpart of regexp.QuoteMeta on the Mongo path.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

func rowsToMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			// Drivers hand text columns back as []byte
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
