package controller

import (
	"encoding/json"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

// id is an identifier the controller sends either as a string or as a number.
type id string

func (i *id) UnmarshalJSON(b []byte) error {
	s, err := models.ParseID(b)
	if err != nil {
		return err
	}
	*i = id(s)
	return nil
}

type licenseServer struct {
	ID               id     `json:"id"`
	HostName         string `json:"hostName"`
	ConnectionStatus string `json:"connectionStatus"`
}

func (l licenseServer) toModel() models.LicenseServer {
	return models.LicenseServer{
		ID:               string(l.ID),
		HostName:         l.HostName,
		ConnectionStatus: models.LicenseConnectionStatus(l.ConnectionStatus),
	}
}

type licenseServerSpec struct {
	HostName            string `json:"hostName"`
	TrustNewCertificate bool   `json:"trustNewCertificate"`
	User                string `json:"user"`
	Password            string `json:"password"`
}

type asyncJob struct {
	ID      id              `json:"id"`
	URL     string          `json:"url"`
	State   string          `json:"state"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (j asyncJob) toModel() models.AsyncJob {
	state := j.State
	if state == "" {
		state = j.Status
	}
	return models.AsyncJob{
		ID:      string(j.ID),
		URL:     j.URL,
		Status:  models.ParseJobStatus(state),
		Message: j.Message,
		Result:  j.Result,
	}
}

type session struct {
	ID        id     `json:"id"`
	ConfigURL string `json:"configUrl"`
}

func (s session) toModel() models.Session {
	return models.Session{ID: string(s.ID), ConfigURL: s.ConfigURL}
}

type test struct {
	Status string `json:"status"`
}

type agent struct {
	ID id     `json:"id"`
	IP string `json:"IP"`
}

func pathParam(name string, value string) (string, error) {
	return runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
}

func addQueryParam(values url.Values, name string, value string) error {
	frag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return err
	}
	parsed, err := url.ParseQuery(frag)
	if err != nil {
		return err
	}
	for k, vs := range parsed {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	return nil
}
