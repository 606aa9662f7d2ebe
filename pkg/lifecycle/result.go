package lifecycle

// Result is an outcome of an operation that can recover from a failure.
type Result struct {
	// Recovered is true when the operation hit a failure and completed
	// through a fallback.
	Recovered bool

	// Cause is the recovered failure. It is nil unless Recovered is true.
	Cause error
}

// SchemaReport compares the live database schema with the expected one.
type SchemaReport struct {
	Valid bool `json:"valid"`

	// MissingTables lists expected tables that do not exist.
	MissingTables []string `json:"missingTables"`

	// MissingColumns maps table names to their missing columns.
	MissingColumns map[string][]string `json:"missingColumns"`

	// TypeMismatches maps table names to columns with unexpected types.
	TypeMismatches map[string][]TypeMismatch `json:"typeMismatches"`
}

// TypeMismatch describes a column whose type differs from the model.
type TypeMismatch struct {
	Column   string `json:"column"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
}

// ConnectionStatus is the result of a connection test.
type ConnectionStatus struct {
	Success  bool   `json:"success"`
	Engine   string `json:"engine"`
	Database string `json:"database"`
	Message  string `json:"message"`
}

// BackupReport describes a finished backup.
type BackupReport struct {
	OK      bool   `json:"ok"`
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Message string `json:"message"`
}
