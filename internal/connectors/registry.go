package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/schema"

	"go.uber.org/zap"
)

// Registry holds the named external connections and serves record
// reads for external sections. It satisfies record.ExternalReader.
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]Connector
	schemas *schema.Registry
	logger  *zap.Logger

	open func(cfg ConnectionConfig) Connector
}

func NewRegistry(schemas *schema.Registry, logger *zap.Logger) *Registry {
	return &Registry{
		conns:   map[string]Connector{},
		schemas: schemas,
		logger:  logger,
		open: func(cfg ConnectionConfig) Connector {
			return NewSQLConnector(cfg)
		},
	}
}

// Add connects cfg, introspects its bound tables and registers each one
// as an external section. A name can only be added once.
func (r *Registry) Add(ctx context.Context, cfg ConnectionConfig) error {
	if cfg.Name == "" {
		return apperr.New(apperr.TypeValidation, "connection name is required")
	}
	if _, err := driverFor(cfg.Type); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[cfg.Name]; exists {
		return apperr.Newf(apperr.TypeValidation, "connection %q is already registered", cfg.Name)
	}

	conn := r.open(cfg)
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("connect %q: %w", cfg.Name, err)
	}

	for _, binding := range cfg.Sections {
		cols, err := conn.GetSchema(ctx, binding.Table)
		if err != nil {
			_ = conn.Disconnect(ctx)
			return err
		}
		sec, err := buildSection(binding, cfg.Name, cols)
		if err != nil {
			_ = conn.Disconnect(ctx)
			return err
		}
		if err := r.schemas.Register(sec); err != nil {
			_ = conn.Disconnect(ctx)
			return err
		}
		r.logger.Info("external section registered",
			zap.String("connection", cfg.Name),
			zap.String("section", sec.Name),
			zap.String("table", sec.Table),
			zap.Int("fields", len(sec.Fields)))
	}

	r.conns[cfg.Name] = conn
	return nil
}

// Get returns the named connection.
func (r *Registry) Get(name string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[name]
	if !ok {
		return nil, apperr.Newf(apperr.TypeConnectionNotFound, "connection %q is not registered", name)
	}
	return conn, nil
}

// Remove disconnects and drops one connection. Sections registered from
// it stay in the schema registry but fail at read time.
func (r *Registry) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[name]
	if !ok {
		return apperr.Newf(apperr.TypeConnectionNotFound, "connection %q is not registered", name)
	}
	delete(r.conns, name)
	return conn.Disconnect(ctx)
}

// Names lists the registered connections, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.conns))
	for name := range r.conns {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Test pings one named connection.
func (r *Registry) Test(ctx context.Context, name string) error {
	conn, err := r.Get(name)
	if err != nil {
		return err
	}
	return conn.TestConnection(ctx)
}

// Close disconnects everything. Runs as the fx shutdown hook.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for name, conn := range r.conns {
		if err := conn.Disconnect(ctx); err != nil && first == nil {
			first = fmt.Errorf("disconnect %q: %w", name, err)
		}
		delete(r.conns, name)
	}
	return first
}

// QueryRecords serves the record materializer for external sections.
func (r *Registry) QueryRecords(ctx context.Context, connection, table string, fields []string, specs []record.FilterSpec, limit int64) ([]map[string]interface{}, error) {
	conn, err := r.Get(connection)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Query(ctx, QueryRequest{
		Table:   table,
		Fields:  fields,
		Filters: specs,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// LoadConnections reads the JSON connection declarations named by
// CONNECTORS_FILE. An empty path means no external connections.
func LoadConnections(path string) ([]ConnectionConfig, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read connections file: %w", err)
	}

	var configs []ConnectionConfig
	if err := json.Unmarshal(raw, &configs); err != nil {
		return nil, fmt.Errorf("connections file %s is invalid: %w", path, err)
	}
	return configs, nil
}
