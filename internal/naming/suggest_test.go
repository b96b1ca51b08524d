package naming

import "testing"

func TestSuggestAt(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		cursor int
		want   string
		ok     bool
	}{
		{"open brace suggests first placeholder", "{", 1, "name}", true},
		{"partial name", "{na", 3, "me}", true},
		{"partial number", "{nu", 3, "mber}", true},
		{"full name adds brace", "{name", 5, "}", true},
		{"shared prefix prefers name", "{n", 2, "ame}", true},
		{"prefix with literal before", "clip_{num", 9, "ber}", true},
		{"closing brace already typed", "{na}", 3, "me", true},
		{"overlap must be contiguous", "{name_{n", 2, "ame}", true},
		{"no open brace", "clip", 2, "", false},
		{"cursor before brace", "{na", 0, "", false},
		{"closed placeholder", "{name}", 6, "", false},
		{"token matches nothing", "{x", 2, "", false},
		{"everything already present", "{name}", 1, "", false},
		{"cursor past end", "{na", 9, "", false},
		{"negative cursor", "{na", -1, "", false},
		{"empty text", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestAt(tt.text, tt.cursor)
			if ok != tt.ok {
				t.Fatalf("SuggestAt(%q, %d) ok = %v, want %v", tt.text, tt.cursor, ok, tt.ok)
			}
			if ok && got.Completion != tt.want {
				t.Errorf("SuggestAt(%q, %d) = %q, want %q", tt.text, tt.cursor, got.Completion, tt.want)
			}
		})
	}
}

func TestSuggestAtPlaceholderIdentity(t *testing.T) {
	got, ok := SuggestAt("{num", 4)
	if !ok {
		t.Fatal("expected a suggestion")
	}
	if got.Placeholder != PlaceholderNumber {
		t.Errorf("Placeholder = %q, want %q", got.Placeholder, PlaceholderNumber)
	}
}

func TestSessionPushesOnChange(t *testing.T) {
	type push struct {
		suggestion Suggestion
		ok         bool
	}
	var pushes []push
	session := NewSession(func(s Suggestion, ok bool) {
		pushes = append(pushes, push{s, ok})
	})

	session.OnFocusChange(true)
	session.OnCursorChange("{n", 2)
	session.OnCursorChange("{na", 3)
	session.OnCursorChange("{na", 3) // no transition, no push
	session.OnFocusChange(false)

	want := []push{
		{Suggestion{Placeholder: PlaceholderName, Completion: "ame}"}, true},
		{Suggestion{Placeholder: PlaceholderName, Completion: "me}"}, true},
		{Suggestion{}, false},
	}
	if len(pushes) != len(want) {
		t.Fatalf("got %d pushes, want %d: %v", len(pushes), len(want), pushes)
	}
	for i := range want {
		if pushes[i] != want[i] {
			t.Errorf("push %d = %+v, want %+v", i, pushes[i], want[i])
		}
	}
}

func TestSessionIgnoresCursorWhileUnfocused(t *testing.T) {
	calls := 0
	session := NewSession(func(Suggestion, bool) { calls++ })

	session.OnCursorChange("{na", 3)
	if calls != 0 {
		t.Fatalf("unfocused cursor change produced %d pushes", calls)
	}
	if _, ok := session.Current(); ok {
		t.Error("expected no active suggestion before focus")
	}

	session.OnFocusChange(true)
	session.OnCursorChange("{na", 3)
	if calls != 1 {
		t.Fatalf("focused cursor change produced %d pushes, want 1", calls)
	}
	current, ok := session.Current()
	if !ok || current.Completion != "me}" {
		t.Errorf("Current() = %+v, %v, want completion %q", current, ok, "me}")
	}
}
