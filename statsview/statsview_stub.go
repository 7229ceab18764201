//go:build !statsview
// +build !statsview

package statsview

// Launch does nothing when the statsview build tag is absent.
func Launch(addr string) (stop func()) {
	return func() {}
}

// Available returns false when the statsview build tag is absent.
func Available() bool {
	return false
}
