package inter

import (
	"time"
)

// Timestamp is a block or consensus timestamp, expressed in milliseconds
// since the Unix epoch. Millisecond precision is part of the protocol: all
// delay arithmetic (target block delays, eligibility delays) is computed in
// milliseconds, so the type is kept distinct from time.Time to avoid
// accidental unit mixing.
type Timestamp uint64

// FromTime converts a time.Time into a protocol Timestamp, truncating to
// millisecond precision.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano() / int64(time.Millisecond))
}

// Time converts the Timestamp back into a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)*int64(time.Millisecond))
}

// Add returns the timestamp shifted forward by the given number of
// milliseconds.
func (t Timestamp) Add(ms uint64) Timestamp {
	return t + Timestamp(ms)
}

// DelaySince returns the difference t - prev in milliseconds.
// Returns 0 if prev is not earlier than t, since a non-positive block delay
// never occurs on a valid chain and callers treat 0 as "no delay observed".
func (t Timestamp) DelaySince(prev Timestamp) uint64 {
	if prev >= t {
		return 0
	}
	return uint64(t - prev)
}
