package models

import "encoding/json"

// ConfigurationRecord is a configuration stored on the controller.
type ConfigurationRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	ConfigURL   string `json:"configUrl"`
	Readonly    bool   `json:"readonly,omitempty"`
}

// UnmarshalJSON accepts the id either as a string or as a number.
func (r *ConfigurationRecord) UnmarshalJSON(b []byte) error {
	type plain ConfigurationRecord
	var v struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	id, err := ParseID(v.ID)
	if err != nil {
		return err
	}
	*r = ConfigurationRecord(v.plain)
	r.ID = id
	return nil
}

// ParseID decodes a JSON id that the controller sends either as a string or as a number.
func ParseID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// ConfigurationFilter narrows a configuration listing. An empty filter lists everything.
type ConfigurationFilter struct {
	SearchCol string
	SearchVal string
}

func ByDisplayName(name string) ConfigurationFilter {
	return ConfigurationFilter{SearchCol: "displayName", SearchVal: name}
}
