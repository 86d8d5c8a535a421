package api

import "fmt"

// TargetType discriminates the three kinds of conversational endpoints the
// backend hosts.
type TargetType string

const (
	TargetAgent    TargetType = "agent"
	TargetTeam     TargetType = "team"
	TargetWorkflow TargetType = "workflow"
)

// AllTargetTypes is the fixed selection order shown in the UI.
var AllTargetTypes = []TargetType{TargetAgent, TargetTeam, TargetWorkflow}

// Plural returns the URL path segment for this type ("agents", "teams",
// "workflows").
func (t TargetType) Plural() string {
	return string(t) + "s"
}

// Label returns the capitalized display name for selection screens.
func (t TargetType) Label() string {
	switch t {
	case TargetAgent:
		return "Agents"
	case TargetTeam:
		return "Teams"
	case TargetWorkflow:
		return "Workflows"
	}
	return string(t)
}

// TargetInfo identifies a conversational endpoint. Immutable once selected;
// picking a different target means going back through the selection flow.
type TargetInfo struct {
	Type TargetType `json:"type"`
	ID   string     `json:"id"`
	Name string     `json:"name"`
}

// Display returns the name with the id as fallback.
func (t TargetInfo) Display() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

func (t TargetInfo) String() string {
	return fmt.Sprintf("%s/%s", t.Type, t.ID)
}

// BackendSession is a session record as reported by the backend. Backend and
// local session ids are disjoint namespaces: these rows are advisory display
// data only and are never resumed locally.
type BackendSession struct {
	ID        string `json:"session_id"`
	Name      string `json:"session_name,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}
