package config

import (
	"time"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Controller Terraform Orchestrator Journal

type Configuration struct {
	Controller   Controller   `mapstructure:"controller" debugmap:"visible"`
	Terraform    Terraform    `mapstructure:"terraform" debugmap:"visible"`
	Orchestrator Orchestrator `mapstructure:"orchestrator" debugmap:"visible"`
	Journal      Journal      `mapstructure:"journal" debugmap:"visible"`
	LogFormat    string       `mapstructure:"log_format" debugmap:"visible" default:"console"`
	LogLevel     string       `mapstructure:"log_level" debugmap:"visible" default:"info"`
}

type Controller struct {
	AdminUser         string        `mapstructure:"admin_user" debugmap:"visible" default:"admin"`
	AdminPassword     string        `mapstructure:"admin_password" debugmap:"sensitive" default:"CyPerf&Keysight#1"`
	InteractiveEULA   bool          `mapstructure:"interactive_eula" debugmap:"visible" default:"false"`
	PollInterval      time.Duration `mapstructure:"poll_interval" debugmap:"visible" default:"1s"`
	RetryInterval     time.Duration `mapstructure:"retry_interval" debugmap:"visible" default:"2s"`
	RetryMaxElapsed   time.Duration `mapstructure:"retry_max_elapsed" debugmap:"visible" default:"10m"`
	ReadyTimeout      time.Duration `mapstructure:"ready_timeout" debugmap:"visible" default:"10m"`
	LicenseSettleWait time.Duration `mapstructure:"license_settle_wait" debugmap:"visible" default:"5s"`
}

type Terraform struct {
	Dir      string `mapstructure:"dir" debugmap:"visible" default:"./terraform"`
	VarsFile string `mapstructure:"vars_file" debugmap:"visible" default:"terraform.tfvars"`
	// ExecPath is the terraform binary. Empty means look it up in PATH.
	ExecPath string `mapstructure:"exec_path" debugmap:"visible"`
}

type Orchestrator struct {
	ConfigFile string             `mapstructure:"config_file" debugmap:"visible" default:"./configurations/Palo-Alto-Firewall-Demo.zip"`
	AgentRoles []models.AgentRole `mapstructure:"agent_roles" debugmap:"visible"`
}

// SetDefaults fills in the agent roles of the firewall demo topology.
func (o *Orchestrator) SetDefaults() {
	if len(o.AgentRoles) == 0 {
		o.AgentRoles = DefaultAgentRoles()
	}
}

type Journal struct {
	// Path of the DuckDB run journal. Empty disables the journal.
	Path string `mapstructure:"path" debugmap:"visible" default:"pan-demo-setup.duckdb"`
}

func DefaultAgentRoles() []models.AgentRole {
	return []models.AgentRole{
		{Segment: "PAN-VM-FW-Client", OutputKey: "panfw_client_agent_detail"},
		{Segment: "AWS-NW-FW-Client", OutputKey: "awsfw_client_agent_detail"},
		{Segment: "PAN-VM-FW-Server", OutputKey: "panfw_server_agent_detail"},
		{Segment: "AWS-NW-FW-Server", OutputKey: "awsfw_server_agent_detail"},
	}
}
