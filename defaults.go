package botdb

// orDefault returns def when v is the zero value of T (a nil Logger or
// Hooks), otherwise v.
func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
