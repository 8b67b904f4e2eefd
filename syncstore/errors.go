package syncstore

import "fmt"

// MissingPeriodError reports that ApplyUpdates needed a trusted
// committee for a sync period the store has not yet verified. The
// verifier surfaces this as a resumable "fetch this period" hint
// rather than a bare failure, per spec.md §4.5/§7's missing-sync-data
// handling.
type MissingPeriodError struct {
	Period uint64
}

func (e *MissingPeriodError) Error() string {
	return fmt.Sprintf("syncstore: no trusted committee for period %d", e.Period)
}
