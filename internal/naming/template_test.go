package naming

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     bool
	}{
		{"empty means default", "", true},
		{"default template", "{name}_converted", true},
		{"both placeholders", "{name}_{number}", true},
		{"literal only", "output", true},
		{"repeated placeholder", "{name}-{name}", true},
		{"placeholder only", "{number}", true},
		{"literal with spaces and dots", "clip v2. final", true},
		{"unknown token", "bad{xyz}name", false},
		{"empty token", "{}", false},
		{"unclosed brace", "{name", false},
		{"stray closing brace", "name}", false},
		{"close before open", "}name{", false},
		{"nested braces", "{na{me}}", false},
		{"reserved slash", "dir/{name}", false},
		{"reserved backslash", `{name}\out`, false},
		{"reserved colon", "out:{name}", false},
		{"reserved question mark", "{name}?", false},
		{"reserved asterisk", "*{number}", false},
		{"reserved quote", `"{name}"`, false},
		{"reserved angle brackets", "<{name}>", false},
		{"reserved pipe", "{name}|{number}", false},
		{"token with trailing space", "{name }", false},
		{"uppercase token", "{Name}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.template); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.template, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"valid passes through", "{name}_{number}", "{name}_{number}"},
		{"empty falls back", "", DefaultTemplate},
		{"whitespace falls back", "   ", DefaultTemplate},
		{"invalid falls back", "bad{xyz}name", DefaultTemplate},
		{"reserved chars fall back", "a/b{name}", DefaultTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.template); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestHasNumberPlaceholder(t *testing.T) {
	if !HasNumberPlaceholder("{name}_{number}") {
		t.Error("expected {number} to be detected")
	}
	if HasNumberPlaceholder("{name}_converted") {
		t.Error("did not expect {number} in a name-only template")
	}
	if HasNumberPlaceholder("number") {
		t.Error("bare literal must not count as a placeholder")
	}
}
