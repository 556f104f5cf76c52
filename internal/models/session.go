package models

type TestStatus string

const (
	TestStatusStopped  TestStatus = "STOPPED"
	TestStatusStarted  TestStatus = "STARTED"
	TestStatusStopping TestStatus = "STOPPING"
)

// Session is a configuration instantiated on the controller.
type Session struct {
	ID        string
	ConfigURL string
	Config    *SessionConfig
}

// SessionConfig is the part of a session's configuration document that agent
// assignment works on.
type SessionConfig struct {
	NetworkProfiles []NetworkProfile `json:"NetworkProfiles"`
}

type NetworkProfile struct {
	ID                string             `json:"id"`
	IPNetworkSegments []IPNetworkSegment `json:"IPNetworkSegment"`
}

type IPNetworkSegment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// AgentAssignments is nil until a segment has been assigned agents at least once.
	AgentAssignments *AgentAssignments `json:"agentAssignments,omitempty"`
}

type AgentAssignments struct {
	ByID  []AgentAssignmentDetails `json:"ByID"`
	ByTag []string                 `json:"ByTag"`
}

// AgentAssignmentDetails references one agent. The controller expects the agent id
// in both fields.
type AgentAssignmentDetails struct {
	AgentID string `json:"agentId"`
	ID      string `json:"id"`
}

func NewAgentAssignmentDetails(agentID string) AgentAssignmentDetails {
	return AgentAssignmentDetails{AgentID: agentID, ID: agentID}
}
