package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/reglet-dev/extcompat/artifact"
	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/capability"
	"github.com/reglet-dev/extcompat/netutil"
)

type resolutionReport struct {
	Artifact         string             `json:"artifact"`
	HostVersion      string             `json:"host_version"`
	CapabilitySource string             `json:"capability_source"`
	Capabilities     int                `json:"capabilities"`
	Version          string             `json:"version,omitempty"`
	Package          string             `json:"package,omitempty"`
	Digest           string             `json:"digest,omitempty"`
	Requirements     []string           `json:"requirements,omitempty"`
	Stats            entities.ScanStats `json:"stats"`
	Mismatches       []mismatchReport   `json:"capability_mismatches,omitempty"`
}

type mismatchReport struct {
	Version     string   `json:"version"`
	Unsupported []string `json:"unsupported"`
}

func newResolutionReport(res *artifact.Resolution) resolutionReport {
	r := resolutionReport{
		Artifact:         res.ID.String(),
		HostVersion:      res.HostVersion,
		CapabilitySource: string(res.Capabilities.Source),
		Capabilities:     res.Capabilities.Set.Len(),
		Stats:            res.Outcome.Stats,
	}
	if sel := res.Outcome.Selected; sel != nil {
		r.Version = sel.Record.Version
		r.Package = netutil.Redact(sel.Record.PackageURL)
		r.Digest = sel.Digest.String()
		r.Requirements = capability.Strings(sel.Requirements)
	}
	for _, rej := range res.Outcome.RejectionsFor(entities.ReasonCapabilityMismatch) {
		r.Mismatches = append(r.Mismatches, mismatchReport{
			Version:     rej.Version,
			Unsupported: capability.Strings(rej.Unsupported),
		})
	}
	return r
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResolutionText(w io.Writer, r resolutionReport) {
	if r.Version != "" {
		fmt.Fprintf(w, "%s: %s\n", r.Artifact, r.Version)
		fmt.Fprintf(w, "  package:  %s\n", r.Package)
		fmt.Fprintf(w, "  digest:   %s\n", r.Digest)
		if len(r.Requirements) > 0 {
			fmt.Fprintf(w, "  requires: %s\n", strings.Join(r.Requirements, ", "))
		}
	} else {
		fmt.Fprintf(w, "%s: no compatible version\n", r.Artifact)
	}

	fmt.Fprintf(w, "  host:     %s (capabilities: %s", r.HostVersion, r.CapabilitySource)
	if r.Capabilities > 0 {
		fmt.Fprintf(w, ", %d known", r.Capabilities)
	} else {
		fmt.Fprint(w, ", unchecked")
	}
	fmt.Fprintln(w, ")")

	s := r.Stats
	fmt.Fprintf(w, "  scanned:  %d (prerelease %d, engine mismatch %d, capability mismatch %d, fetch failures %d)\n",
		s.Checked, s.Prerelease, s.EngineMismatch, s.CapabilityMismatch, s.FetchFailures)
	for _, m := range r.Mismatches {
		fmt.Fprintf(w, "    %s needs %s\n", m.Version, strings.Join(m.Unsupported, ", "))
	}
}
