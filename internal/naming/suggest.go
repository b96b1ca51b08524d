package naming

import (
	"strings"
	"sync"
)

// Suggestion is a completion for a partially typed placeholder.
type Suggestion struct {
	// Placeholder is the recognized placeholder being completed.
	Placeholder string
	// Completion is the text to insert at the cursor. Characters the user
	// already typed after the cursor are not repeated.
	Completion string
}

// SuggestAt computes the completion for the placeholder being typed at the
// given cursor offset (a byte offset into text, 0..len(text)). It scans back
// to the nearest unclosed brace, requires the typed token to be a prefix of
// a recognized placeholder, and picks the first match in fixed placeholder
// order. It returns false when the cursor is out of range, no placeholder is
// open, the token matches nothing, or everything is already typed.
func SuggestAt(text string, cursor int) (Suggestion, bool) {
	if cursor < 0 || cursor > len(text) {
		return Suggestion{}, false
	}

	open := -1
	for i := cursor - 1; i >= 0; i-- {
		if text[i] == '}' {
			return Suggestion{}, false
		}
		if text[i] == '{' {
			open = i
			break
		}
	}
	if open < 0 {
		return Suggestion{}, false
	}

	typed := text[open+1 : cursor]
	for _, name := range placeholderOrder {
		if !strings.HasPrefix(name, typed) {
			continue
		}
		completion := trimOverlap(name[len(typed):]+"}", text[cursor:])
		if completion == "" {
			return Suggestion{}, false
		}
		return Suggestion{Placeholder: name, Completion: completion}, true
	}
	return Suggestion{}, false
}

// trimOverlap drops the longest suffix of completion that the text following
// the cursor already begins with, so accepting a suggestion never duplicates
// characters like a closing brace the user already typed.
func trimOverlap(completion, after string) string {
	max := len(completion)
	if len(after) < max {
		max = len(after)
	}
	for k := max; k > 0; k-- {
		if completion[len(completion)-k:] == after[:k] {
			return completion[:len(completion)-k]
		}
	}
	return completion
}

// Session tracks a template editor and pushes suggestion changes to a
// subscriber. It is driven by cursor and focus notifications rather than
// interval polling; the subscriber only hears about transitions, never
// repeats.
type Session struct {
	mu      sync.Mutex
	notify  func(Suggestion, bool)
	focused bool
	current Suggestion
	active  bool
}

// NewSession returns a session that invokes notify with each new suggestion,
// or with ok=false when an active suggestion is dismissed.
func NewSession(notify func(suggestion Suggestion, ok bool)) *Session {
	return &Session{notify: notify}
}

// OnCursorChange records the latest editor text and cursor position and
// re-evaluates the suggestion. Notifications while the editor is unfocused
// are ignored.
func (s *Session) OnCursorChange(text string, cursor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.focused {
		return
	}
	suggestion, ok := SuggestAt(text, cursor)
	s.push(suggestion, ok)
}

// OnFocusChange tracks editor focus. Losing focus dismisses any active
// suggestion; gaining focus alone suggests nothing until the cursor moves.
func (s *Session) OnFocusChange(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = focused
	if !focused {
		s.push(Suggestion{}, false)
	}
}

// Current returns the active suggestion, if any.
func (s *Session) Current() (Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.active
}

func (s *Session) push(suggestion Suggestion, ok bool) {
	if ok == s.active && suggestion == s.current {
		return
	}
	s.current = suggestion
	s.active = ok
	if s.notify != nil {
		s.notify(suggestion, ok)
	}
}
