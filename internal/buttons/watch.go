package buttons

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Reader samples both buttons.
type Reader interface {
	Read() (refresh, dismiss bool, err error)
}

// Watch samples r on every tick, feeds the detector and calls onPress for
// each debounced press. It returns when ctx is done.
func Watch(ctx context.Context, r Reader, d *Detector, tick <-chan time.Time, now func() time.Time, onPress func(Press), log *logrus.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			refresh, dismiss, err := r.Read()
			if err != nil {
				log.WithError(err).Warn("button read failed")
				continue
			}
			for _, p := range d.Process(Input{Refresh: refresh, Dismiss: dismiss, Time: now()}) {
				log.WithField("button", p.Button).Info("button pressed")
				onPress(p)
			}
		}
	}
}
