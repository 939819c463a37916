// Package logging provides the process-wide structured logger for livedb.
//
// The package wraps [log/slog] and exposes a single global logger that is
// initialized once and then retrieved through GetLogger. Tables and views
// obtain their loggers here rather than constructing slog.Logger values of
// their own, so level and destination are controlled from one place.
//
// # Initialisation
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"}); err != nil {
//	    log.Fatal(err)
//	}
//
// If GetLogger is called before Init, a default WARN-level text logger on
// stderr is created lazily. The engine logs lifecycle events (table creation,
// view rebuilds, propagation) at DEBUG, so an application that never calls
// Init stays quiet.
//
// # Context helpers
//
//	log := logging.WithTable(name)         // adds table field
//	log := logging.WithView(name, "sorted") // adds view and kind fields
//	log := logging.WithComponent("db")     // adds component field
package logging
