package models

// Agent is a worker node able to generate or receive test traffic.
type Agent struct {
	ID string
	IP string
}

// AgentTable indexes the controller's agents by IP address.
type AgentTable map[string]Agent

func NewAgentTable(agents []Agent) AgentTable {
	t := make(AgentTable, len(agents))
	for _, a := range agents {
		t[a.IP] = a
	}
	return t
}

func (t AgentTable) Lookup(ip string) (Agent, bool) {
	a, ok := t[ip]
	return a, ok
}

// AgentMap maps a network segment name to the ordered list of agent IPs assigned to it.
type AgentMap map[string][]string

// AgentRole binds a network segment name to the provisioning output listing its agents.
type AgentRole struct {
	Segment   string `json:"segment" mapstructure:"segment"`
	OutputKey string `json:"output_key" mapstructure:"output_key"`
}
