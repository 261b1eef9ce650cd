package fat12

import (
	"time"

	"github.com/aligator/fat12/checkpoint"
)

// SecondsPerUnit scales the 5 bit seconds field of a packed time.
// FAT stores seconds in 2 second units, so a conformant decoder uses 2.
// The listing shows the raw field value, which is what 1 does.
const SecondsPerUnit = 1

// TimestampLayout is the layout used to render decoded timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// DecodeDateTime combines a packed date and a packed time into a single timestamp in UTC.
//
// Date (bit 0 is the LSB):
//
//	Bits 0–4: Day of month, 1-31.
//	Bits 5–8: Month of year, 1-12.
//	Bits 9–15: Count of years from 1980.
//
// Time:
//
//	Bits 0–4: Seconds, multiplied by SecondsPerUnit.
//	Bits 5–10: Minutes, 0-59.
//	Bits 11–15: Hours, 0-23.
//
// ErrInvalidTimestamp is returned if any part is out of range, e.g. month 0, day 0 or
// a day after the end of the month. Nothing gets normalized into the next month or day.
func DecodeDateTime(packedDate, packedTime uint16) (time.Time, error) {
	year := int(packedDate>>9) + 1980
	month := int(packedDate&0x01E0) >> 5
	day := int(packedDate & 0x001F)

	hour := int(packedTime >> 11)
	minute := int(packedTime&0x07E0) >> 5
	second := int(packedTime&0x001F) * SecondsPerUnit

	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, checkpoint.New(ErrInvalidTimestamp, "date 0x%04X is %04d-%02d-%02d", packedDate, year, month, day)
	}

	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, checkpoint.New(ErrInvalidTimestamp, "time 0x%04X is %02d:%02d:%02d", packedTime, hour, minute, second)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// daysIn returns the number of days of the month, leap years included.
func daysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
