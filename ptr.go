package peerwire

// Ptr returns a pointer to the given value.
// Useful for constructing optional fields in schema param/result structs.
//
// Example:
//
//	params := GreetParams{
//		Nickname: Ptr("ada"), // optional field
//	}
func Ptr[T any](v T) *T {
	return &v
}
