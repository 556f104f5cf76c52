package models

type LicenseConnectionStatus string

const (
	LicenseConnectionInProgress  LicenseConnectionStatus = "IN_PROGRESS"
	LicenseConnectionEstablished LicenseConnectionStatus = "ESTABLISHED"
	LicenseConnectionError       LicenseConnectionStatus = "ERROR"
)

// LicenseServer is a license server known to the controller.
type LicenseServer struct {
	ID               string
	HostName         string
	ConnectionStatus LicenseConnectionStatus
}

// LicenseServerSpec is the payload used to register a new license server.
type LicenseServerSpec struct {
	HostName            string
	TrustNewCertificate bool
	User                string
	Password            string
}

// LicenseServerState is the local view of attaching one license server.
type LicenseServerState string

const (
	// LicenseServerStateAbsent - nothing attached yet
	LicenseServerStateAbsent LicenseServerState = "absent"
	// LicenseServerStateConfiguring - server created, waiting for the connection to settle
	LicenseServerStateConfiguring LicenseServerState = "configuring"
	// LicenseServerStateEstablished - controller reports the connection as established
	LicenseServerStateEstablished LicenseServerState = "established"
	// LicenseServerStateFailed - connection ended in any other status
	LicenseServerStateFailed LicenseServerState = "failed"
)
