// Package harvest drives one discovery-and-download pass over the
// portal's two-level paginated grid: enumerate document identities from
// the summary table, walk each identity's detail table, download every
// referenced document with verified integrity, reconcile misses, and
// finalize a harvest report.
package harvest

import "errors"

var (
	// ErrNavigationTimeout reports that an expected rendering never
	// appeared within its bounded wait.
	ErrNavigationTimeout = errors.New("harvest: navigation timed out")

	// ErrElementNotFound reports that a business key could not be
	// re-located in the current rendering.
	ErrElementNotFound = errors.New("harvest: element not found")

	// ErrDownloadIntegrity reports a downloaded file below the minimum
	// integrity threshold. The file is never kept.
	ErrDownloadIntegrity = errors.New("harvest: download below integrity threshold")

	// ErrEmptyResult reports that the portal has no data for the
	// requested period. Terminal, not a failure.
	ErrEmptyResult = errors.New("harvest: no data for period")
)
