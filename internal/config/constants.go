package config

// Defaults applied by LoadFile when a field is left empty.
const (
	DefaultServerType     = "cpx11"
	DefaultImage          = "ubuntu-22.04"
	DefaultUsername       = "epaxos"
	DefaultGoVersion      = "1.11.2"
	DefaultBasePort       = 7070
	DefaultClients        = 10
	DefaultWriteFraction  = 0.5
	DefaultTheta          = 0.9
	DefaultConflicts      = -1
	DefaultMetricsScript  = "scripts/client_metrics.py"
	DefaultSetupScript    = "/usr/local/bin/setup_epaxos.sh"
	DefaultStateDir       = ".paxosfleet"
	DefaultEventsSubject  = "paxosfleet.events"
	DefaultArtifactRegion = "fsn1"
)

// Environment variables consulted for secrets that are not set in the file.
const (
	EnvHCloudToken       = "HCLOUD_TOKEN"
	EnvPrivateKeyB64     = "PAXOSFLEET_PRIVATE_KEY_B64"
	EnvArtifactAccessKey = "PAXOSFLEET_S3_ACCESS_KEY"
	EnvArtifactSecretKey = "PAXOSFLEET_S3_SECRET_KEY"
)
