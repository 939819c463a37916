// Package database is a named registry of tables. It owns table lifetimes:
// dropping a table through the database dangles every view built over it.
package database

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"livedb/pkg/dberror"
	"livedb/pkg/logging"
	"livedb/pkg/schema"
	"livedb/pkg/table"
)

// Database coordinates a set of named tables.
type Database struct {
	name   string
	config config
	logger *slog.Logger

	mutex  sync.RWMutex
	tables map[string]*table.Table
	stats  *DatabaseStats
}

// DatabaseStats tracks registry activity.
type DatabaseStats struct {
	TablesCreated int64
	TablesDropped int64
	Propagations  int64
	ErrorCount    int64
	mutex         sync.RWMutex
}

// DatabaseInfo contains database metadata.
type DatabaseInfo struct {
	Name           string
	Tables         []string
	TableCount     int
	TotalRows      int
	PendingChanges int
	TablesCreated  int64
	TablesDropped  int64
	Propagations   int64
	ErrorCount     int64
}

type config struct {
	tableDefaults []table.Option
	limit         int
}

// Option configures a Database.
type Option func(*config)

// WithTableDefaults sets options applied to every table before the options
// passed to CreateTable.
func WithTableDefaults(opts ...table.Option) Option {
	return func(c *config) { c.tableDefaults = append(c.tableDefaults, opts...) }
}

// WithPropagationLimit bounds how many tables PropagateAll works on at once.
func WithPropagationLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.limit = n
		}
	}
}

// New creates an empty database.
func New(name string, opts ...Option) (*Database, error) {
	if name == "" {
		return nil, dberror.SchemaViolation("database name cannot be empty").At("New", "Database")
	}
	c := config{limit: 4}
	for _, opt := range opts {
		opt(&c)
	}
	return &Database{
		name:   name,
		config: c,
		logger: logging.WithComponent("database").With("database", name),
		tables: make(map[string]*table.Table),
		stats:  &DatabaseStats{},
	}, nil
}

// Name returns the database name.
func (db *Database) Name() string { return db.name }

// CreateTable creates and registers a table.
//
// Parameters:
//   - name: unique table name
//   - sch: the table's schema
//   - opts: table options, applied after the database defaults
//
// Returns:
//   - *table.Table: the new table
//   - error: TableExists if the name is taken, SchemaViolation for a bad schema
func (db *Database) CreateTable(name string, sch *schema.Schema, opts ...table.Option) (*table.Table, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, exists := db.tables[name]; exists {
		db.recordError()
		return nil, dberror.TableExists(name).At("CreateTable", "Database")
	}

	all := append(slices.Clone(db.config.tableDefaults), opts...)
	t, err := table.New(name, sch, all...)
	if err != nil {
		db.recordError()
		return nil, err
	}
	db.tables[name] = t

	db.stats.mutex.Lock()
	db.stats.TablesCreated++
	db.stats.mutex.Unlock()

	db.logger.Info("table created", "table", name, "columns", sch.Len())
	return t, nil
}

// Table returns the table registered under name.
func (db *Database) Table(name string) (*table.Table, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, exists := db.tables[name]
	if !exists {
		db.recordError()
		return nil, dberror.TableNotFound(name).At("Table", "Database")
	}
	return t, nil
}

// DropTable unregisters and drops a table. Views over it fail with
// DanglingParent from then on.
func (db *Database) DropTable(name string) error {
	db.mutex.Lock()
	t, exists := db.tables[name]
	if !exists {
		db.mutex.Unlock()
		db.recordError()
		return dberror.TableNotFound(name).At("DropTable", "Database")
	}
	delete(db.tables, name)
	db.mutex.Unlock()

	t.Drop()

	db.stats.mutex.Lock()
	db.stats.TablesDropped++
	db.stats.mutex.Unlock()

	db.logger.Info("table dropped", "table", name)
	return nil
}

// TableNames returns the registered table names in sorted order.
func (db *Database) TableNames() []string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (db *Database) snapshotTables() []*table.Table {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	out := make([]*table.Table, 0, len(db.tables))
	for _, t := range db.tables {
		out = append(out, t)
	}
	return out
}

// PropagateAll brings every view of every table up to date, working on at
// most the configured number of tables at once. It returns the first error.
func (db *Database) PropagateAll(ctx context.Context) error {
	start := time.Now()
	tables := db.snapshotTables()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(db.config.limit)
	for _, t := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return t.Propagate(ctx)
		})
	}
	err := g.Wait()

	db.stats.mutex.Lock()
	db.stats.Propagations++
	if err != nil {
		db.stats.ErrorCount++
	}
	db.stats.mutex.Unlock()

	if err != nil {
		logging.WithError(err).Warn("propagation failed", "database", db.name)
		return err
	}
	db.logger.Debug("propagated", "tables", len(tables), "elapsed", time.Since(start))
	return nil
}

// GetStatistics returns current database statistics.
func (db *Database) GetStatistics() DatabaseInfo {
	tables := db.snapshotTables()
	info := DatabaseInfo{
		Name:       db.name,
		Tables:     db.TableNames(),
		TableCount: len(tables),
	}
	for _, t := range tables {
		info.TotalRows += t.Len()
		info.PendingChanges += t.PendingChanges()
	}

	db.stats.mutex.RLock()
	defer db.stats.mutex.RUnlock()
	info.TablesCreated = db.stats.TablesCreated
	info.TablesDropped = db.stats.TablesDropped
	info.Propagations = db.stats.Propagations
	info.ErrorCount = db.stats.ErrorCount
	return info
}

// recordError updates error statistics
func (db *Database) recordError() {
	db.stats.mutex.Lock()
	db.stats.ErrorCount++
	db.stats.mutex.Unlock()
}
