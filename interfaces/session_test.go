package interfaces

import (
	"errors"
	"testing"
)

// TestSessionConfigValidate tests the Validate method of SessionConfig.
func TestSessionConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  SessionConfig
		wantErr error
	}{
		{
			name: "valid real config",
			config: SessionConfig{
				StorageAddress: "wa.db",
				DeviceName:     "TestApp",
				StoreDialect:   "sqlite3",
				ForeignKeys:    true,
			},
			wantErr: nil,
		},
		{
			name: "simulation does not need a dialect",
			config: SessionConfig{
				StorageAddress: "test.db",
				UseSimulation:  true,
			},
			wantErr: nil,
		},
		{
			name:    "missing storage address",
			config:  SessionConfig{StoreDialect: "sqlite3"},
			wantErr: ErrMissingStorageAddress,
		},
		{
			name:    "blank storage address",
			config:  SessionConfig{StorageAddress: "   ", StoreDialect: "sqlite3"},
			wantErr: ErrMissingStorageAddress,
		},
		{
			name:    "missing dialect",
			config:  SessionConfig{StorageAddress: "wa.db"},
			wantErr: ErrMissingStoreDialect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
