package api

import (
	"sync"
	"time"

	"weather-dashboard/dashboard"
	"weather-dashboard/models"
)

// Snapshot is what the page shows at one instant
type Snapshot struct {
	State       string          `json:"state"`
	Loading     bool            `json:"loading"`
	Error       string          `json:"error,omitempty"`
	ShowContent bool            `json:"showContent"`
	Results     *models.Results `json:"results,omitempty"`
	Updated     time.Time       `json:"updated"`
}

// Board holds the latest dashboard output for the HTTP surface
type Board struct {
	snapshot Snapshot
	mutex    sync.RWMutex
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{
		snapshot: Snapshot{State: dashboard.Idle.String(), Updated: time.Now()},
	}
}

// ShowLoading hides the content while a search runs
func (b *Board) ShowLoading() {
	b.update(func(s *Snapshot) {
		s.State = dashboard.Loading.String()
		s.Loading = true
		s.Error = ""
		s.ShowContent = false
	})
}

// ShowError replaces the content with a message and drops the previous results
func (b *Board) ShowError(message string) {
	b.update(func(s *Snapshot) {
		s.State = dashboard.Failed.String()
		s.Loading = false
		s.Error = message
		s.ShowContent = false
		s.Results = nil
	})
}

// DismissError clears the message; the content stays hidden until the next success
func (b *Board) DismissError() {
	b.update(func(s *Snapshot) {
		s.State = dashboard.Idle.String()
		s.Error = ""
	})
}

// ShowResults displays a completed search
func (b *Board) ShowResults(results models.Results) {
	b.update(func(s *Snapshot) {
		s.State = dashboard.Success.String()
		s.Loading = false
		s.Error = ""
		s.ShowContent = true
		s.Results = &results
	})
}

// Snapshot returns a copy of the current view
func (b *Board) Snapshot() Snapshot {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.snapshot
}

func (b *Board) update(fn func(*Snapshot)) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	fn(&b.snapshot)
	b.snapshot.Updated = time.Now()
}

var _ dashboard.Presenter = (*Board)(nil)
