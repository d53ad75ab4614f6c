package application

import "time"

// Clock interface supaya gampang ditest: Now untuk timestamp,
// Sleep untuk jeda poll loop (test bisa mendorong waktu tanpa tidur beneran)
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock implementasi default, pakai time.Now() / time.Sleep()
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
