package diff

import "fmt"

// ConfigError reports invalid comparison configuration: an unresolvable
// keyword tag or conflicting allow-list/ignore-list settings. Fatal for the
// whole run, surfaced before any matching begins.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// LoadError reports an unreadable or structurally invalid source. Fatal for
// the whole run; sources are never partially ingested.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s failed", e.Path)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MalformedHierarchyError reports an instance missing the patient, study or
// series linkage the loader was expected to supply. Fatal for the affected
// study comparison only.
type MalformedHierarchyError struct {
	SOPInstanceUID string
	Missing        string
}

func (e *MalformedHierarchyError) Error() string {
	return fmt.Sprintf("instance %s has no %s", e.SOPInstanceUID, e.Missing)
}

// NoSeriesError reports a chosen study with no series to match. Fatal for
// the affected study comparison only.
type NoSeriesError struct {
	StudyUID string
}

func (e *NoSeriesError) Error() string {
	return fmt.Sprintf("study %s has no series", e.StudyUID)
}
