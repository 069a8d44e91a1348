package main

import "testing"

func TestColumnMissing(t *testing.T) {
	tests := []struct {
		name    string
		probe   string
		want    bool
		wantErr bool
	}{
		{"column absent", `[{"count": 0}]`, true, false},
		{"column present", `[{"count": 1}]`, false, false},
		// Digits elsewhere in the payload must not flip the decision.
		{"extra fields with digits", `[{"count": 0, "table_schema": "schema10"}]`, true, false},
		{"malformed response", `ok`, false, true},
		{"no rows", `[]`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := columnMissing(tt.probe)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
