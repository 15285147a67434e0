package admin

import (
	"context"
	"log"

	"gorm.io/gorm"

	"karaoke/internal/config"
	"karaoke/internal/domain"
)

// Notifier lets the reset push a broadcast so every connected screen
// reloads.
type Notifier interface {
	Notify(message string)
	QueueChanged(queueView any)
}

// Service covers venue-wide operations that cut across modules: the
// end-of-night reset and the runtime night settings.
type Service struct {
	db       *gorm.DB
	settings *config.Settings
	notifier Notifier
}

func NewService(db *gorm.DB, settings *config.Settings, notifier Notifier) *Service {
	return &Service{db: db, settings: settings, notifier: notifier}
}

// ResetNight wipes all per-night state in one transaction: payments,
// consumption lines, tabs, songs and guests, in foreign-key order.
// Tables, products and the nickname ban list survive into the next
// night.
func (s *Service) ResetNight(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&domain.Payment{},
			&domain.ConsumptionLine{},
			&domain.Tab{},
			&domain.Song{},
			&domain.Guest{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("admin: night state reset")
	if s.notifier != nil {
		s.notifier.Notify("night reset")
		s.notifier.QueueChanged(nil)
	}
	return nil
}

type SettingsView struct {
	ClosingTime  string              `json:"closing_time"`
	Autoplay     bool                `json:"autoplay"`
	ApprovalMode config.ApprovalMode `json:"approval_mode"`
}

func (s *Service) Settings() SettingsView {
	return SettingsView{
		ClosingTime:  s.settings.ClosingTime(),
		Autoplay:     s.settings.Autoplay(),
		ApprovalMode: s.settings.ApprovalMode(),
	}
}

func (s *Service) SetClosingTime(hhmm string) error {
	return s.settings.SetClosingTime(hhmm)
}

func (s *Service) SetAutoplay(on bool) {
	s.settings.SetAutoplay(on)
}

func (s *Service) SetApprovalMode(mode config.ApprovalMode) error {
	return s.settings.SetApprovalMode(mode)
}
