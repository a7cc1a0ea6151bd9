package alloc

import "github.com/pkg/errors"

// ErrOutOfMemory indicates that the arena refused to grow far enough to satisfy
// an allocation. The heap is left exactly as it was before the failed call, so
// the caller may free memory and retry.
var ErrOutOfMemory error = errors.New("arena cannot grow to satisfy the allocation")
