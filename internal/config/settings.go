package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// ApprovalMode selects how admitted songs enter the queue.
type ApprovalMode string

const (
	// ApprovalImmediate auto-approves every admitted request.
	ApprovalImmediate ApprovalMode = "immediate"
	// ApprovalManual holds requests in pending until an operator
	// approves them (the stale-request safety net still applies).
	ApprovalManual ApprovalMode = "manual"
	// ApprovalLazy parks requests in pending_lazy until the lazy
	// promotion check pulls the next one in.
	ApprovalLazy ApprovalMode = "lazy"
)

// Settings holds the operator-tunable knobs that change during a night:
// closing time, autoplay and the approval mode. It is injected into the
// queue services rather than read as process-global state.
type Settings struct {
	mu           sync.RWMutex
	closingTime  string // wall clock "HH:MM", next upcoming occurrence
	autoplay     bool
	approvalMode ApprovalMode
}

func NewSettings() *Settings {
	s := &Settings{
		closingTime:  getEnv("KARAOKE_CLOSING_TIME", "23:59"),
		autoplay:     parseBool(os.Getenv("KARAOKE_AUTOPLAY")),
		approvalMode: ApprovalImmediate,
	}
	switch strings.ToLower(os.Getenv("KARAOKE_APPROVAL_MODE")) {
	case string(ApprovalLazy):
		s.approvalMode = ApprovalLazy
	case string(ApprovalManual):
		s.approvalMode = ApprovalManual
	}
	return s
}

func (s *Settings) ClosingTime() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closingTime
}

func (s *Settings) SetClosingTime(hhmm string) error {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return fmt.Errorf("invalid closing time %q, want HH:MM", hhmm)
	}
	s.mu.Lock()
	s.closingTime = hhmm
	s.mu.Unlock()
	return nil
}

func (s *Settings) Autoplay() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoplay
}

func (s *Settings) SetAutoplay(on bool) {
	s.mu.Lock()
	s.autoplay = on
	s.mu.Unlock()
}

func (s *Settings) ApprovalMode() ApprovalMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvalMode
}

func (s *Settings) SetApprovalMode(mode ApprovalMode) error {
	if mode != ApprovalImmediate && mode != ApprovalManual && mode != ApprovalLazy {
		return fmt.Errorf("invalid approval mode %q", mode)
	}
	s.mu.Lock()
	s.approvalMode = mode
	s.mu.Unlock()
	return nil
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
