package arena

import "github.com/pkg/errors"

var (
	// ErrArenaLimit is returned from Grow when extending the range would
	// exceed the arena's capacity or configured limit
	ErrArenaLimit = errors.New("arena size limit reached")
	// ErrBadGrowCount is returned from Grow when the requested word count is
	// zero or negative
	ErrBadGrowCount = errors.New("grow word count must be positive")
)
