package app

// ProjectOperation tracks a CLI operation that may touch a project archive.
// Operations are created in memory with ID=0. Only archive-mutating commands
// persist them (giving them an auto-increment ID from the catalog).
type ProjectOperation struct {
	ID          int64
	Operation   string
	ArchivePath string
	Status      string // "success" or "error"
}

// NewProjectOperation creates a new in-memory project operation.
func NewProjectOperation(operation, archivePath string) *ProjectOperation {
	return &ProjectOperation{
		Operation:   operation,
		ArchivePath: archivePath,
		Status:      "success",
	}
}

// Persisted returns true if this operation has been saved to the catalog.
func (op *ProjectOperation) Persisted() bool {
	return op.ID != 0
}
