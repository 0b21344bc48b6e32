//go:build windows || plan9

package limits

// SetLimits is a no-op where descriptor limits are not adjustable.
func SetLimits() error {
	return nil
}
