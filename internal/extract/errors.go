package extract

import "errors"

var (
	// ErrNoRegionFound reports that an anchor has no unconsumed,
	// geometrically plausible image candidate in any tier, including the
	// previous-page fallback. The pipeline emits the caption text-only
	// and continues.
	ErrNoRegionFound = errors.New("no image region found for caption")

	// ErrDegenerateRegion reports that a selected region is entirely
	// background after thresholding. The trimmer recovers by returning
	// the untrimmed input.
	ErrDegenerateRegion = errors.New("region is entirely background")

	// ErrDuplicateArtifact reports a second artifact write for the same
	// (kind, number) label. Fatal for that write only.
	ErrDuplicateArtifact = errors.New("artifact already exists for label")
)
