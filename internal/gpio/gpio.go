// Package gpio reads the widget's physical buttons.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads button states.
type Reader interface {
	// Read returns the logical states of the refresh and dismiss buttons.
	// Buttons pull the line low, so raw inactive = logical pressed.
	Read() (refresh, dismiss bool, err error)

	// Close releases GPIO resources.
	Close() error
}

// Default pins (BCM numbering).
const (
	DefaultPinRefresh = 17
	DefaultPinDismiss = 27
)

// Chip is the GPIO character device the buttons are wired to.
const Chip = "gpiochip0"
