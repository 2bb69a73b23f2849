package core

import "fmt"

// Key scopes conversation state to a (user, agent) pair. Both identifiers are
// opaque, case-sensitive strings with no implied hierarchy.
type Key struct {
	UserID    string `json:"user_id"`
	AgentName string `json:"agent_name"`
}

// NewKey builds a Key from its parts.
func NewKey(userID, agentName string) Key {
	return Key{UserID: userID, AgentName: agentName}
}

// Validate returns a ValidationError when either component is empty.
func (k Key) Validate() error {
	if k.UserID == "" {
		return &ValidationError{Field: "userId", Message: "must not be empty"}
	}
	if k.AgentName == "" {
		return &ValidationError{Field: "agentName", Message: "must not be empty"}
	}
	return nil
}

// String renders the composite form used for storage addressing and logs.
func (k Key) String() string { return fmt.Sprintf("%s/%s", k.UserID, k.AgentName) }
