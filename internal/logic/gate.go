package logic

// Elapsed reports whether period has passed between last and now.
// The subtraction is done in the counter's unsigned width, so a counter that
// wrapped past its maximum still yields the true small difference.
func Elapsed(now, last, period Millis) bool {
	return now-last >= period
}
