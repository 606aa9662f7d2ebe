package iodb

import "log/slog"

// Option configures a Manager.
type Option func(*Manager)

// OptRoot sets the application root. Relative database directories are
// resolved against it. The default is the working directory.
func OptRoot(root string) Option {
	return func(m *Manager) {
		m.root = root
	}
}

// OptRunner sets the runner of external tools (pg_dump, psql).
func OptRunner(r Runner) Option {
	return func(m *Manager) {
		m.runner = r
	}
}

// OptProgress shows a progress bar while SQLite files are copied.
func OptProgress(b bool) Option {
	return func(m *Manager) {
		m.progress = b
	}
}

// OptLogger sets the logger. The default is slog.Default().
func OptLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}
