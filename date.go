// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonout

import "time"

// DateLayout is the layout of rendered dates, in UTC with millisecond
// precision.
const DateLayout = "2006-01-02T15:04:05.000Z"

// FormatDate renders the instant t in DateLayout. The result does not depend
// on the location of t or the local time zone.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }
