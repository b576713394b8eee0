//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads buttons from actual hardware.
type RealReader struct {
	chip    *gpiocdev.Chip
	refresh *gpiocdev.Line
	dismiss *gpiocdev.Line
}

// NewRealReader requests both button lines as pulled-up inputs.
func NewRealReader(pinRefresh, pinDismiss int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	refresh, err := chip.RequestLine(pinRefresh, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request refresh pin %d: %w", pinRefresh, err)
	}

	dismiss, err := chip.RequestLine(pinDismiss, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		refresh.Close()
		chip.Close()
		return nil, fmt.Errorf("request dismiss pin %d: %w", pinDismiss, err)
	}

	return &RealReader{chip: chip, refresh: refresh, dismiss: dismiss}, nil
}

// Read returns the logical button states. A pressed button shorts the line
// to ground, so raw 0 = pressed.
func (r *RealReader) Read() (bool, bool, error) {
	refreshRaw, err := r.refresh.Value()
	if err != nil {
		return false, false, fmt.Errorf("read refresh pin: %w", err)
	}

	dismissRaw, err := r.dismiss.Value()
	if err != nil {
		return false, false, fmt.Errorf("read dismiss pin: %w", err)
	}

	return refreshRaw == 0, dismissRaw == 0, nil
}

// Close returns the lines to pulled-down inputs, matching the Pi boot
// defaults, and releases the chip.
func (r *RealReader) Close() error {
	var errs []error
	for name, line := range map[string]*gpiocdev.Line{"refresh": r.refresh, "dismiss": r.dismiss} {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
