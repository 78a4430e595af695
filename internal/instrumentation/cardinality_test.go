package instrumentation

import "testing"

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"Jane@Example.COM", "example.com"},
		{"test@subdomain.example.com", "subdomain.example.com"},
		{`"a@b"@example.org`, "example.org"},
		{"invalid", "unknown"},
		{"", "unknown"},
		{"@", "unknown"},
		{"user@", "unknown"},
		{"@domain.com", "domain.com"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := EmailDomain(tt.email); got != tt.expected {
				t.Errorf("EmailDomain(%q) = %q, want %q", tt.email, got, tt.expected)
			}
		})
	}
}

func TestBoundedLabel(t *testing.T) {
	if got := boundedLabel("created", provisionOutcomes); got != "created" {
		t.Errorf("boundedLabel(created) = %q", got)
	}
	if got := boundedLabel("b@example.com", provisionOutcomes); got != labelOther {
		t.Errorf("boundedLabel(email) = %q, want %q", got, labelOther)
	}
	if got := boundedLabel(EventOutcomeSkipped, eventOutcomes); got != EventOutcomeSkipped {
		t.Errorf("boundedLabel(skipped) = %q", got)
	}
}
