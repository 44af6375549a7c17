package capability

// Check decides whether every requirement is implemented by the host.
//
// An empty supported set is permissive and always accepts. Otherwise each
// requirement's base name must be a member of supported; revisions are never
// compared. The unsupported requirements are returned in input order.
func Check(requirements []Requirement, supported Set) (bool, []Requirement) {
	if supported.IsEmpty() {
		return true, nil
	}

	var unsupported []Requirement
	for _, r := range requirements {
		if !supported.Contains(r.Name()) {
			unsupported = append(unsupported, r)
		}
	}
	return len(unsupported) == 0, unsupported
}
