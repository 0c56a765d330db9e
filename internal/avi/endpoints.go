package avi

import "strings"

// Default service hosts.
const (
	DefaultPrimaryURL = "https://sws.serviceobjects.com"
	DefaultBackupURL  = "https://swsbackup.serviceobjects.com"
	DefaultTrialURL   = "https://trial.serviceobjects.com"
)

// Role names the position of an attempt in the failover sequence.
type Role string

const (
	RolePrimary Role = "primary"
	RoleBackup  Role = "backup"
	RoleTrial   Role = "trial"
)

// Endpoints is the set of service hosts a Client talks to. Transports append
// their own paths, so each value is a scheme and host with an optional prefix.
type Endpoints struct {
	Primary string
	Backup  string
	Trial   string
}

// DefaultEndpoints returns the production, backup and trial hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Primary: DefaultPrimaryURL,
		Backup:  DefaultBackupURL,
		Trial:   DefaultTrialURL,
	}
}

// withDefaults fills empty hosts and strips trailing slashes.
func (e Endpoints) withDefaults() Endpoints {
	def := DefaultEndpoints()
	if e.Primary == "" {
		e.Primary = def.Primary
	}
	if e.Backup == "" {
		e.Backup = def.Backup
	}
	if e.Trial == "" {
		e.Trial = def.Trial
	}
	e.Primary = strings.TrimRight(e.Primary, "/")
	e.Backup = strings.TrimRight(e.Backup, "/")
	e.Trial = strings.TrimRight(e.Trial, "/")
	return e
}

// route returns the first host to try and whether a backup attempt is allowed.
// Trial has a single host and never fails over.
func (e Endpoints) route(live bool) (string, Role, bool) {
	if !live {
		return e.Trial, RoleTrial, false
	}
	return e.Primary, RolePrimary, true
}
