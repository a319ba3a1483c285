package scrape

import "errors"

var (
	// ErrNoChapters means extraction completed but produced an empty
	// chapter list, which is a failure, not a valid result.
	ErrNoChapters = errors.New("no chapters found")

	// ErrNoPages means a chapter page yielded no usable images.
	ErrNoPages = errors.New("no pages found")

	// ErrUnsupportedSource is kept distinct for logging; dispatch falls
	// back to the universal extractor instead of returning it.
	ErrUnsupportedSource = errors.New("unsupported source")
)
