// Package conflict reports when files a project intends to modify are
// locked by a different project.
//
// Matching is exact on canonical paths. A lock on a directory does not
// cover the files inside it.
package conflict

import (
	"sort"
	"strings"
	"time"

	"github.com/danieljhkim/sphere/internal/lockstore"
)

// Unknown is used for requester fields the caller did not supply.
const Unknown = "unknown"

// ActiveLister enumerates currently held locks.
type ActiveLister interface {
	ListActive() ([]lockstore.Lock, error)
}

// Conflict pairs a requested file with the lock another project holds on it.
type Conflict struct {
	File        string          `json:"file"`
	HeldBy      lockstore.Owner `json:"held_by"`
	RequestedBy lockstore.Owner `json:"requested_by"`
	Since       time.Time       `json:"since"`
	Reason      string          `json:"reason,omitempty"`
}

// Detector checks candidate paths against active locks.
type Detector struct {
	lister ActiveLister
}

// NewDetector creates a Detector reading locks from lister.
func NewDetector(lister ActiveLister) *Detector {
	return &Detector{lister: lister}
}

// Check returns a Conflict for every candidate path locked by a project
// other than requester.Project, sorted by file. Empty requester agent or
// protocol fields are reported as "unknown".
func (d *Detector) Check(paths []string, requester lockstore.Owner) ([]Conflict, error) {
	conflicts := []Conflict{}
	if len(paths) == 0 {
		return conflicts, nil
	}

	wanted := make(map[string]bool, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		wanted[lockstore.Canonical(p)] = true
	}

	active, err := d.lister.ListActive()
	if err != nil {
		return nil, err
	}

	requestedBy := requester
	if requestedBy.Agent == "" {
		requestedBy.Agent = Unknown
	}
	if requestedBy.Protocol == "" {
		requestedBy.Protocol = Unknown
	}

	for _, l := range active {
		file := lockstore.Canonical(l.File)
		if !wanted[file] || l.LockedBy.Project == requester.Project {
			continue
		}
		conflicts = append(conflicts, Conflict{
			File:        file,
			HeldBy:      l.LockedBy,
			RequestedBy: requestedBy,
			Since:       l.Since,
			Reason:      l.Reason,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].File < conflicts[j].File
	})
	return conflicts, nil
}
