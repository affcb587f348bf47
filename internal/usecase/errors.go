package usecase

import "fmt"

// MalformedRecordError reports a raw record that is missing a field its
// record type requires. Normalization skips the record and counts it; the
// batch is never aborted.
type MalformedRecordError struct {
	RecordType string
	Missing    string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: missing %s", e.RecordType, e.Missing)
}

// UnsupportedRecordKindError reports a record whose declared type is outside
// the closed variant set. Same skip-and-count policy as malformed records.
type UnsupportedRecordKindError struct {
	RecordType string
}

func (e *UnsupportedRecordKindError) Error() string {
	return fmt.Sprintf("unsupported record type %q", e.RecordType)
}

// ReportConsistencyError indicates the composed report violated the
// sum-of-kind-counts invariant. It signals a pipeline bug and must not be
// swallowed.
type ReportConsistencyError struct {
	Total   int
	KindSum int
}

func (e *ReportConsistencyError) Error() string {
	return fmt.Sprintf("report inconsistency: %d activities retrieved but kind counts sum to %d", e.Total, e.KindSum)
}
