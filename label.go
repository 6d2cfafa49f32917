package lace

import "strconv"

// itoa formats a worker ID for use as a Prometheus label value.
func itoa(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}
