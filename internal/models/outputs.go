package models

import (
	"encoding/json"
	"fmt"
)

const (
	OutputControllerDetail = "mdw_detail"
	OutputLicenseServer    = "license_server"
)

// Outputs holds the values produced by the provisioning tool, keyed by output name.
type Outputs map[string]json.RawMessage

// ParseOutputs decodes the document printed by `terraform output -json`.
func ParseOutputs(data []byte) (Outputs, error) {
	var raw map[string]struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode provisioning outputs: %w", err)
	}
	out := make(Outputs, len(raw))
	for k, v := range raw {
		out[k] = v.Value
	}
	return out, nil
}

// ControllerAddress returns mdw_detail.public_ip, or "" when the output is absent.
func (o Outputs) ControllerAddress() string {
	raw, ok := o[OutputControllerDetail]
	if !ok {
		return ""
	}
	var detail struct {
		PublicIP string `json:"public_ip"`
	}
	if err := json.Unmarshal(raw, &detail); err != nil {
		return ""
	}
	return detail.PublicIP
}

// LicenseServer returns the license server host name, or "" when the output is absent.
func (o Outputs) LicenseServer() string {
	raw, ok := o[OutputLicenseServer]
	if !ok {
		return ""
	}
	var host string
	if err := json.Unmarshal(raw, &host); err != nil {
		return ""
	}
	return host
}

// AgentIPs returns the private_ip of every record of the given output, in order.
// The boolean is false when the output does not exist.
func (o Outputs) AgentIPs(key string) ([]string, bool, error) {
	raw, ok := o[key]
	if !ok {
		return nil, false, nil
	}
	var records []struct {
		PrivateIP string `json:"private_ip"`
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, true, fmt.Errorf("failed to decode output %q: %w", key, err)
	}
	ips := make([]string, 0, len(records))
	for _, r := range records {
		ips = append(ips, r.PrivateIP)
	}
	return ips, true, nil
}
