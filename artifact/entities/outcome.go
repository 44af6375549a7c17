package entities

import (
	"github.com/reglet-dev/extcompat/artifact/values"
	"github.com/reglet-dev/extcompat/capability"
)

// RejectionReason explains why the selector passed over a version.
type RejectionReason string

const (
	ReasonPrerelease         RejectionReason = "prerelease"
	ReasonNoEngine           RejectionReason = "no-engine"
	ReasonEngineMismatch     RejectionReason = "engine-mismatch"
	ReasonNoPackage          RejectionReason = "no-package"
	ReasonFetchFailed        RejectionReason = "fetch-failed"
	ReasonCapabilityMismatch RejectionReason = "capability-mismatch"
)

// Rejection records one skipped version.
type Rejection struct {
	Version     string
	Reason      RejectionReason
	Detail      string                   // engine requirement or error text
	Unsupported []capability.Requirement // set for capability mismatches
}

// ScanStats accumulates counters across one scan.
// Checked counts every record visited, including silent skips.
type ScanStats struct {
	Checked            int `json:"checked"`
	Prerelease         int `json:"prerelease"`
	EngineMismatch     int `json:"engineMismatch"`
	CapabilityMismatch int `json:"capabilityMismatch"`
	FetchFailures      int `json:"fetchFailures"`
}

// Selection is the accepted version together with what was learned while
// probing it.
type Selection struct {
	Record       VersionRecord
	Requirements []capability.Requirement
	Digest       values.Digest
}

// Outcome is the result of scanning a catalog. Selected is nil when the scan
// was exhausted without an acceptance.
type Outcome struct {
	Selected   *Selection
	Rejections []Rejection
	Stats      ScanStats
}

// Accepted reports whether a version was selected.
func (o *Outcome) Accepted() bool {
	return o != nil && o.Selected != nil
}

// Reject records a skipped version and bumps the matching counter.
// Reasons without a dedicated counter are recorded but not counted.
func (o *Outcome) Reject(r Rejection) {
	switch r.Reason {
	case ReasonPrerelease:
		o.Stats.Prerelease++
	case ReasonEngineMismatch:
		o.Stats.EngineMismatch++
	case ReasonCapabilityMismatch:
		o.Stats.CapabilityMismatch++
	case ReasonFetchFailed:
		o.Stats.FetchFailures++
	}
	o.Rejections = append(o.Rejections, r)
}

// RejectionsFor returns the rejections with the given reason, in scan order.
func (o *Outcome) RejectionsFor(reason RejectionReason) []Rejection {
	var out []Rejection
	for _, r := range o.Rejections {
		if r.Reason == reason {
			out = append(out, r)
		}
	}
	return out
}
