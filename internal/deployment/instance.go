package deployment

import (
	"fmt"
	"sort"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/util/labels"
	"github.com/imamik/paxosfleet/internal/util/naming"
)

// Role is the benchmark role a machine plays.
type Role string

const (
	RoleMaster Role = "master"
	RoleServer Role = "server"
	RoleClient Role = "client"
)

// Zone maps a location code to a Hetzner location and a replica index.
// The index offsets server ports and selects the client's locality group.
type Zone struct {
	Location string
	Index    int
}

var zones = map[string]Zone{
	"ca": {Location: "hil", Index: 0},
	"va": {Location: "ash", Index: 1},
	"eu": {Location: "fsn1", Index: 2},
	"or": {Location: "hil", Index: 3},
	"jp": {Location: "sin", Index: 4},
	"de": {Location: "nbg1", Index: 5},
	"fi": {Location: "hel1", Index: 6},
}

// LookupZone returns the zone of a location code.
func LookupZone(code string) (Zone, error) {
	z, ok := zones[code]
	if !ok {
		return Zone{}, fmt.Errorf("%w: %q", ErrUnknownLocation, code)
	}
	return z, nil
}

// LocationCodes returns every known location code, sorted.
func LocationCodes() []string {
	codes := make([]string, 0, len(zones))
	for code := range zones {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Settings are the attributes shared by every instance of a deployment.
type Settings struct {
	Deployment string
	RunID      string
	ServerType string
	Image      string
	Username   string
	PrivateKey []byte
	// RemoteDir is the working directory relative to the admin user's home.
	RemoteDir string
}

// SettingsFromConfig derives instance settings from cfg.
func SettingsFromConfig(cfg *config.Config, runID string) (Settings, error) {
	key, err := cfg.Access.PrivateKey()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Deployment: cfg.Name,
		RunID:      runID,
		ServerType: cfg.Machine.ServerType,
		Image:      cfg.Machine.Image,
		Username:   cfg.Access.Username,
		PrivateKey: key,
		RemoteDir:  cfg.Source.RemoteDir(),
	}, nil
}

// Instance describes one machine of a deployment. It is immutable.
type Instance struct {
	Role     Role
	Location string
	Zone     Zone
	Settings Settings
}

// NewInstance validates location and returns the instance descriptor.
func NewInstance(role Role, location string, settings Settings) (*Instance, error) {
	zone, err := LookupZone(location)
	if err != nil {
		return nil, err
	}
	return &Instance{
		Role:     role,
		Location: location,
		Zone:     zone,
		Settings: settings,
	}, nil
}

// Name is the instance's name inside the deployment, e.g. "server-eu".
func (i *Instance) Name() string {
	return naming.Instance(string(i.Role), i.Location)
}

// ServerName is the cloud server name.
func (i *Instance) ServerName() string {
	return naming.Server(i.Settings.Deployment, string(i.Role), i.Location)
}

// Labels returns the cloud labels of the instance's server.
func (i *Instance) Labels() map[string]string {
	return labels.NewLabelBuilder(i.Settings.Deployment).
		WithRole(string(i.Role)).
		WithLocation(i.Location).
		WithRunIDIfSet(i.Settings.RunID).
		Build()
}

func (i *Instance) String() string { return i.Name() }
