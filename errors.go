package mediaremote

import "errors"

// ErrUnavailable reports that the MediaRemote framework could not be loaded
// or is not present on this system. The condition is permanent for the
// process lifetime; callers should not retry.
var ErrUnavailable = errors.New("mediaremote: framework unavailable")

// ErrHelperExited reports that the out-of-process adapter helper terminated
// and the session is no longer receiving updates.
var ErrHelperExited = errors.New("mediaremote: adapter helper exited")
