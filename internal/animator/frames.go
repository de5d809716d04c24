package animator

import "time"

// Frames delivers frame timestamps until stopped.
type Frames interface {
	C() <-chan time.Time
	Stop()
}

// FrameSource opens a new frame stream per animation run.
type FrameSource func() Frames

type tickerFrames struct{ t *time.Ticker }

func (f tickerFrames) C() <-chan time.Time { return f.t.C }
func (f tickerFrames) Stop()               { f.t.Stop() }

// TickerFrames emits a frame every d, standing in for a display refresh.
func TickerFrames(d time.Duration) FrameSource {
	if d <= 0 {
		d = 16 * time.Millisecond
	}
	return func() Frames { return tickerFrames{t: time.NewTicker(d)} }
}
