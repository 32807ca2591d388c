package common

import "testing"

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name    string
		format  string
		allowed []string
		wantErr string
	}{
		{"json allowed", "json", supported, ""},
		{"markdown allowed", "markdown", supported, ""},
		{"xml rejected", "xml", supported,
			`unsupported output format "xml" (supported: json, text, markdown)`},
		{"formats are case sensitive", "JSON", supported,
			`unsupported output format "JSON" (supported: json, text, markdown)`},
		{"empty format rejected", "", supported,
			`unsupported output format "" (supported: json, text, markdown)`},
		{"no allow-list accepts anything", "xml", nil, ""},
		{"single entry allow-list", "text", []string{"json"},
			`unsupported output format "text" (supported: json)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.allowed)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}
