package app

import "testing"

func TestNewProjectOperation(t *testing.T) {
	tests := []struct {
		name        string
		operation   string
		archivePath string
	}{
		{
			name:        "with archive path",
			operation:   "SaveProject",
			archivePath: "/projects/walk.lucas",
		},
		{
			name:        "empty archive path",
			operation:   "RecentProjects",
			archivePath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewProjectOperation(tt.operation, tt.archivePath)

			if op.Operation != tt.operation {
				t.Errorf("Operation = %q, want %q", op.Operation, tt.operation)
			}
			if op.ArchivePath != tt.archivePath {
				t.Errorf("ArchivePath = %q, want %q", op.ArchivePath, tt.archivePath)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}
			if op.ID != 0 {
				t.Errorf("ID = %d, want 0", op.ID)
			}
		})
	}
}

func TestProjectOperation_Persisted(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{name: "not persisted when ID is 0", id: 0, want: false},
		{name: "persisted when ID is positive", id: 1, want: true},
		{name: "persisted when ID is large", id: 99999, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &ProjectOperation{ID: tt.id}
			if got := op.Persisted(); got != tt.want {
				t.Errorf("Persisted() = %v, want %v", got, tt.want)
			}
		})
	}
}
