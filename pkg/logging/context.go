package logging

import (
	"log/slog"
)

// WithTable creates a logger with table context.
//
// Example:
//
//	log := logging.WithTable("users")
//	log.Debug("rows appended", "count", 10)
func WithTable(tableName string) *slog.Logger {
	return GetLogger().With("table", tableName)
}

// WithView creates a logger with view context.
//
// Example:
//
//	log := logging.WithView("top_orders", "sorted")
//	log.Debug("rebuilt", "rows", n)
func WithView(viewName, kind string) *slog.Logger {
	return GetLogger().With("view", viewName, "kind", kind)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("database")
//	log.Info("component initialized")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Warn("view degraded", "view", name)
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
