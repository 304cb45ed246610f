package store

import "time"

// timeNow is a package-level variable for testability.
var timeNow = time.Now

func nowRFC3339() string {
	return timeNow().UTC().Format(time.RFC3339)
}
