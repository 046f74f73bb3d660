package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/herozvz07-ctrl/guilder/internal/models"
	"github.com/herozvz07-ctrl/guilder/internal/roster"
)

var (
	ErrFetchFailed    = errors.New("roster fetch failed")
	ErrNoSnapshot     = errors.New("no roster snapshot yet")
	ErrMemberNotFound = errors.New("roster member not found")
	ErrNoSourceURL    = errors.New("no roster source configured")
)

// RosterService reconciles the stored roster snapshot against the external
// page. One mutex covers the whole fetch-diff-merge-persist sequence so the
// timer-driven run and a manual trigger serialize instead of interleaving.
type RosterService struct {
	db       *gorm.DB
	fetcher  roster.Fetcher
	notifier Notifier
	timeout  time.Duration
	mu       sync.Mutex
	now      func() time.Time

	urlMu     sync.RWMutex
	sourceURL string
}

func NewRosterService(db *gorm.DB, fetcher roster.Fetcher, notifier Notifier, fetchTimeout time.Duration) *RosterService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RosterService{
		db:       db,
		fetcher:  fetcher,
		notifier: notifier,
		timeout:  fetchTimeout,
		now:      time.Now,
	}
}

// SetSourceURL reconfigures where reconciliation fetches from. Owner-gated
// at the call site.
func (s *RosterService) SetSourceURL(url string) {
	s.urlMu.Lock()
	s.sourceURL = url
	s.urlMu.Unlock()
}

func (s *RosterService) SourceURL() string {
	s.urlMu.RLock()
	defer s.urlMu.RUnlock()
	return s.sourceURL
}

// ReconcileCurrent runs a reconciliation against the configured source.
func (s *RosterService) ReconcileCurrent(ctx context.Context) (*ReconcileResult, error) {
	url := s.SourceURL()
	if url == "" {
		return nil, ErrNoSourceURL
	}
	return s.Reconcile(ctx, url)
}

// ReconcileResult summarizes one reconciliation run.
type ReconcileResult struct {
	Joined      []string `json:"joined"`
	Left        []string `json:"left"`
	MemberCount int      `json:"member_count"`
	AvgLevel    float64  `json:"avg_level"`
}

// Reconcile fetches the external roster, merges it with the stored snapshot
// and persists the result. Any fetch or parse problem, including a
// zero-member page (almost certainly a markup change, not an empty clan),
// leaves the stored snapshot untouched and reports ErrFetchFailed.
func (s *RosterService) Reconcile(ctx context.Context, sourceURL string) (*ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.fetcher.Fetch(fetchCtx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if len(page.Entries) == 0 {
		return nil, fmt.Errorf("%w: page yielded no members", ErrFetchFailed)
	}

	var snapshot models.RosterSnapshot
	err = s.db.First(&snapshot).Error
	firstRun := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !firstRun {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var old []models.RosterMember
	if !firstRun {
		if err := s.db.Where("snapshot_id = ?", snapshot.ID).Find(&old).Error; err != nil {
			return nil, fmt.Errorf("failed to load members: %w", err)
		}
	}

	merged := MergeRoster(old, page.Entries, s.now())

	snapshot.GuildName = page.GuildName
	snapshot.SourceURL = sourceURL
	snapshot.AvgLevel = AverageLevel(merged.Members)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if firstRun {
			if err := tx.Create(&snapshot).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(&snapshot).Error; err != nil {
				return err
			}
			if err := tx.Where("snapshot_id = ?", snapshot.ID).Delete(&models.RosterMember{}).Error; err != nil {
				return err
			}
		}
		for i := range merged.Members {
			merged.Members[i].SnapshotID = snapshot.ID
		}
		return tx.Create(&merged.Members).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	// Churn notices only make sense against a previous snapshot.
	if !firstRun {
		for _, nick := range merged.Joined {
			s.notifier.NotifyClan(ctx, fmt.Sprintf("🎉 **%s** вступил в клан!", nick))
		}
		for _, nick := range merged.Left {
			s.notifier.NotifyClan(ctx, fmt.Sprintf("👋 **%s** покинул клан.", nick))
			s.notifier.NotifyAdmins(ctx, fmt.Sprintf("⚠️ Участник **%s** больше не в клане.", nick))
		}
	}

	slog.Info("roster reconciled",
		"members", len(merged.Members),
		"joined", len(merged.Joined),
		"left", len(merged.Left))

	return &ReconcileResult{
		Joined:      merged.Joined,
		Left:        merged.Left,
		MemberCount: len(merged.Members),
		AvgLevel:    snapshot.AvgLevel,
	}, nil
}

// Snapshot returns the stored singleton with its members.
func (s *RosterService) Snapshot() (*models.RosterSnapshot, error) {
	var snapshot models.RosterSnapshot
	if err := s.db.First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	if err := s.db.Where("snapshot_id = ?", snapshot.ID).Order("nickname").Find(&snapshot.Members).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// CheckInactive reports members whose last-seen is older than the threshold
// and alerts the admin chat about each one. Pure read, no mutation.
func (s *RosterService) CheckInactive(ctx context.Context, thresholdDays int) ([]models.RosterMember, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	cutoff := s.now().AddDate(0, 0, -thresholdDays)
	var stale []models.RosterMember
	for _, m := range snapshot.Members {
		if m.LastSeen.Before(cutoff) {
			stale = append(stale, m)
			s.notifier.NotifyAdmins(ctx, fmt.Sprintf(
				"💤 **%s** не появлялся с %s.", m.Nickname, m.LastSeen.Format("02.01.2006")))
		}
	}
	return stale, nil
}

// MarkSeen refreshes a member's last-seen to now. Locally authoritative:
// the next reconciliation carries it over.
func (s *RosterService) MarkSeen(nickname string) error {
	return s.setMemberField(nickname, "last_seen", s.now())
}

// SetLeader flips the locally owned leadership flag by nickname.
func (s *RosterService) SetLeader(nickname string, leader bool) error {
	return s.setMemberField(nickname, "leader", leader)
}

func (s *RosterService) setMemberField(nickname, column string, value interface{}) error {
	result := s.db.Model(&models.RosterMember{}).
		Where("nickname = ?", nickname).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
