// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionStatus indicates how a conversion run ended.
type ConversionStatus string

const (
	// ConversionDone means an archive was written.
	ConversionDone ConversionStatus = "converted"

	// ConversionNoMatches means no row matched the prefix. Nothing is written.
	ConversionNoMatches ConversionStatus = "no_matches"

	// ConversionCancelled means the operator did not choose a source or a
	// destination. Nothing is written.
	ConversionCancelled ConversionStatus = "cancelled"

	// ConversionFailed means the run aborted on bad input or an I/O error.
	ConversionFailed ConversionStatus = "failed"
)

// Wrote reports whether the status implies an archive exists on disk.
func (s ConversionStatus) Wrote() bool {
	return s == ConversionDone
}
