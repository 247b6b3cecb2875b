package entity

import "strconv"

// SnowflakeEpoch is the millisecond origin of snowflake timestamps
// (2015-01-01T00:00:00Z).
const SnowflakeEpoch int64 = 1420070400000

// SnowflakeTime extracts the creation timestamp from a snowflake id as
// milliseconds since the Unix epoch. The id carries its creation time in the
// upper 42 bits, offset from SnowflakeEpoch and shifted left by 22.
//
// A non-numeric id yields 0, which sorts before every real message and
// therefore never qualifies for a reconciliation window.
func SnowflakeTime(id string) int64 {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0
	}
	return int64(n>>22) + SnowflakeEpoch
}
