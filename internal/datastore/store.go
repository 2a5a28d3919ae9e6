package datastore

// Store defines the interface for the local row store
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable creates a new table with the given schema if it doesn't exist
	CreateTable(schema string) error

	// Insert inserts one record into the specified table and returns its row id
	Insert(table string, record map[string]any) (int64, error)

	// Close closes the connection to the data store
	Close() error
}
