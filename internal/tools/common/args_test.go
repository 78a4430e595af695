package common

import (
	"testing"
	"time"
)

func TestStringArg(t *testing.T) {
	args := map[string]any{"name": "value", "number": 3}

	if got := StringArg(args, "name"); got != "value" {
		t.Errorf("StringArg(name) = %q, want %q", got, "value")
	}
	if got := StringArg(args, "number"); got != "" {
		t.Errorf("StringArg(number) = %q, want empty", got)
	}
	if got := StringArg(args, "missing"); got != "" {
		t.Errorf("StringArg(missing) = %q, want empty", got)
	}
}

func TestRequiredString(t *testing.T) {
	args := map[string]any{"email": "bob@example.com", "empty": ""}

	if got, err := RequiredString(args, "email"); err != nil || got != "bob@example.com" {
		t.Errorf("RequiredString(email) = %q, %v", got, err)
	}
	if _, err := RequiredString(args, "empty"); err == nil || err.Error() != "empty is required" {
		t.Errorf("RequiredString(empty) error = %v, want %q", err, "empty is required")
	}
	if _, err := RequiredString(args, "missing"); err == nil {
		t.Error("RequiredString(missing) expected error")
	}
}

func TestTimeArg(t *testing.T) {
	args := map[string]any{"from": "2025-03-01T09:00:00Z", "bad": "tomorrow"}

	got, err := TimeArg(args, "from")
	if err != nil {
		t.Fatalf("TimeArg(from) error = %v", err)
	}
	if want := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("TimeArg(from) = %v, want %v", got, want)
	}

	got, err = TimeArg(args, "missing")
	if err != nil || !got.IsZero() {
		t.Errorf("TimeArg(missing) = %v, %v, want zero time", got, err)
	}

	if _, err := TimeArg(args, "bad"); err == nil {
		t.Error("TimeArg(bad) expected error")
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{"missing", nil, 7, false},
		{"float", float64(14), 14, false},
		{"int", 3, 3, false},
		{"fraction", 1.5, 0, true},
		{"string", "3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.value != nil {
				args["days"] = tt.value
			}
			got, err := IntArg(args, "days", 7)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IntArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("IntArg() = %d, want %d", got, tt.want)
			}
		})
	}
}
