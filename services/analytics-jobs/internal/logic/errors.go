package logic

import "errors"

// ErrStoreUnavailable wraps failures reading the analytics store.
var ErrStoreUnavailable = errors.New("analytics store unavailable")
