// Package chat holds per-session conversational state: a bounded turn
// history and an accumulating user profile.
package chat

import (
	"strings"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// maxHistory bounds the sliding history window.
const maxHistory = 10

// Turn is one history entry.
type Turn struct {
	Role    string
	Content string
}

// Profile accumulates what the user has revealed about themselves. Slots are
// write-monotonic: an empty update never clears a known value, and nothing
// here resets implicitly.
type Profile struct {
	CurrentScore  string
	TargetScore   string
	TargetPeriod  string
	PreferredTime string
}

// Slot keys accepted by Update, matching the router's slot names.
const (
	SlotCurrentScore  = "current_score"
	SlotTargetScore   = "target_score"
	SlotTargetPeriod  = "target_period"
	SlotPreferredTime = "preferred_time"
)

// Update merges incoming slots. Only known keys with non-empty values are
// applied; everything else is ignored.
func (p *Profile) Update(slots map[string]string) {
	for k, v := range slots {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		switch k {
		case SlotCurrentScore:
			p.CurrentScore = v
		case SlotTargetScore:
			p.TargetScore = v
		case SlotTargetPeriod:
			p.TargetPeriod = v
		case SlotPreferredTime:
			p.PreferredTime = v
		}
	}
}

// Render serializes the profile in fixed slot order. Unset slots render as
// (Unknown) so prompts always see all four keys.
func (p *Profile) Render() string {
	var b strings.Builder
	b.WriteString("- current_score: " + orUnknown(p.CurrentScore) + "\n")
	b.WriteString("- target_score: " + orUnknown(p.TargetScore) + "\n")
	b.WriteString("- target_period: " + orUnknown(p.TargetPeriod) + "\n")
	b.WriteString("- preferred_time: " + orUnknown(p.PreferredTime))
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "(Unknown)"
	}
	return s
}

// Memory is one session's state. It is not safe for concurrent use; the
// session layer serializes turns.
type Memory struct {
	turns   []Turn
	Profile Profile
}

// NewMemory creates empty session state.
func NewMemory() *Memory {
	return &Memory{}
}

// AppendTurn pushes a turn, evicting from the front once the window is full.
func (m *Memory) AppendTurn(role, content string) {
	m.turns = append(m.turns, Turn{Role: role, Content: content})
	if len(m.turns) > maxHistory {
		m.turns = m.turns[len(m.turns)-maxHistory:]
	}
}

// History returns a copy of the retained turns in order.
func (m *Memory) History() []Turn {
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// RenderContext serializes history then profile into the context string the
// router and composer prompts consume. Output is deterministic for a fixed
// session state.
func (m *Memory) RenderContext() string {
	var b strings.Builder

	b.WriteString("[Conversation]\n")
	if len(m.turns) == 0 {
		b.WriteString("(no prior turns)\n")
	}
	for _, t := range m.turns {
		b.WriteString(t.Role + ": " + t.Content + "\n")
	}

	b.WriteString("\n[User Profile]\n")
	b.WriteString(m.Profile.Render())

	return b.String()
}
