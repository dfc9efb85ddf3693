package helpers

// Ptr returns a pointer to a copy of val. Handy for optional fields in
// update requests.
func Ptr[T any](val T) *T {
	return &val
}
