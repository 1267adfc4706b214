package panel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/five82/lumen/internal/device"
)

type fakeDevice struct {
	mu sync.Mutex

	status    *device.Status
	statusErr error
	music     *device.Music
	musicErr  error
	unlockErr error
	resetErr  error
	modeErr   error

	sendDelay   time.Duration
	inFlight    int
	maxInFlight int

	colors     []device.RGB
	modes      []device.Mode
	partyHz    []float64
	unlocks    int
	resets     int
	statusHits int
	musicHits  int
	events     []string
}

var errOffline = errors.New("offline")

func (f *fakeDevice) FetchStatus(context.Context) (*device.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusHits++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if f.status == nil {
		return &device.Status{}, nil
	}
	dup := *f.status
	return &dup, nil
}

func (f *fakeDevice) FetchMusic(context.Context) (*device.Music, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.musicHits++
	if f.musicErr != nil {
		return nil, f.musicErr
	}
	if f.music == nil {
		return &device.Music{}, nil
	}
	dup := *f.music
	return &dup, nil
}

func (f *fakeDevice) SetMode(_ context.Context, mode device.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
	f.events = append(f.events, "mode:"+string(mode))
	return f.modeErr
}

func (f *fakeDevice) PostRGB(_ context.Context, c device.RGB) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.sendDelay
	f.mu.Unlock()

	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	f.colors = append(f.colors, c)
	f.events = append(f.events, "rgb")
	return nil
}

func (f *fakeDevice) SetPartyHz(_ context.Context, hz float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partyHz = append(f.partyHz, hz)
	return nil
}

func (f *fakeDevice) Unlock(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks++
	return f.unlockErr
}

func (f *fakeDevice) Reset(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return f.resetErr
}

func (f *fakeDevice) sentColors() []device.RGB {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]device.RGB(nil), f.colors...)
}

func (f *fakeDevice) sentModes() []device.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]device.Mode(nil), f.modes...)
}

func (f *fakeDevice) sentPartyHz() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.partyHz...)
}

func (f *fakeDevice) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

func (f *fakeDevice) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}
