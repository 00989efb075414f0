package services

import (
	"time"

	"github.com/prepforge/prepforge_backend/util"
)

// Unlimited marks a cap that is never enforced for the tier.
const Unlimited = -1

// Plan is fixed policy data per subscription tier. The engine reads it, never
// mutates it.
type Plan struct {
	Name                 string `json:"name"`
	MaxActiveExams       int    `json:"maxActiveExams"`
	DailyGenerationQuota int    `json:"dailyGenerationQuota"`
	MonthlyExamLimit     int    `json:"monthlyExamLimit"`
	MaxDownloads         int    `json:"maxDownloads"`
	CanDownload          bool   `json:"canDownload"`
}

var plans = map[string]Plan{
	"basic":    {Name: "basic", MaxActiveExams: 1, DailyGenerationQuota: 1, MonthlyExamLimit: 10, MaxDownloads: 0, CanDownload: false},
	"standard": {Name: "standard", MaxActiveExams: 3, DailyGenerationQuota: 100, MonthlyExamLimit: 50, MaxDownloads: 1, CanDownload: true},
	"premium":  {Name: "premium", MaxActiveExams: 10, DailyGenerationQuota: 1000, MonthlyExamLimit: Unlimited, MaxDownloads: 5, CanDownload: true},
}

// PlanForTier resolves the tier's policy, falling back to basic for anything
// unrecognized.
func PlanForTier(tier string) Plan {
	if p, ok := plans[tier]; ok {
		return p
	}
	return plans["basic"]
}

// QuotaStore is what the ledger needs from persistence.
type QuotaStore interface {
	GetQuotaState(userID int) (tier string, used int, lastReset *time.Time, err error)
	IncrementDailyQuota(userID int, windowExpired bool, now time.Time) error
	CountActiveExams(userID int) (int, error)
	CountCompletedAttemptsSince(userID int, since time.Time) (int, error)
	CountDownloads(userID int) (int, error)
	InsertDownload(userID int, examID string) error
	DeleteDownload(userID int, examID string) error
}

// Decision is the structured admit/deny outcome of a quota check. Denial is a
// normal decision, not an error; it carries the numbers a client needs to
// render a message. Handlers flatten it into their response shape themselves,
// converting ResetIn to seconds, so it carries no json tags.
type Decision struct {
	Allowed      bool
	Reason       string
	CurrentUsage int
	Limit        int
	ResetIn      time.Duration
}

// QuotaService is the usage ledger: it decides admit/deny for quota-gated
// actions and commits increments after the gated action succeeded. Checks are
// read-then-decide; small overshoot under heavy concurrency is accepted,
// under-counting is not (commits increment from the persisted value).
type QuotaService struct {
	store QuotaStore
	now   func() time.Time
}

func NewQuotaService(store QuotaStore) *QuotaService {
	return &QuotaService{store: store, now: time.Now}
}

// CheckGenerationLimit runs the generation gates in order: active-exam cap,
// monthly exam cap (non-premium), then the rolling daily window.
func (s *QuotaService) CheckGenerationLimit(userID int) (Decision, error) {
	tier, used, lastReset, err := s.store.GetQuotaState(userID)
	if err != nil {
		return Decision{}, err
	}
	plan := PlanForTier(tier)
	now := s.now()

	active, err := s.store.CountActiveExams(userID)
	if err != nil {
		return Decision{}, err
	}
	if active >= plan.MaxActiveExams {
		return Decision{
			Allowed:      false,
			Reason:       "active exam limit reached",
			CurrentUsage: active,
			Limit:        plan.MaxActiveExams,
		}, nil
	}

	if plan.MonthlyExamLimit != Unlimited {
		monthly, err := s.store.CountCompletedAttemptsSince(userID, util.StartOfMonth(now))
		if err != nil {
			return Decision{}, err
		}
		if monthly >= plan.MonthlyExamLimit {
			return Decision{
				Allowed:      false,
				Reason:       "monthly exam limit reached",
				CurrentUsage: monthly,
				Limit:        plan.MonthlyExamLimit,
			}, nil
		}
	}

	return EvaluateDailyWindow(plan, used, lastReset, now), nil
}

// EvaluateDailyWindow is the pure daily-window decision: if a full window has
// elapsed since the last reset the effective used-count is zero (nothing is
// written here; the next increment stamps the fresh reset).
func EvaluateDailyWindow(plan Plan, used int, lastReset *time.Time, now time.Time) Decision {
	effectiveUsed := used
	if util.WindowElapsed(lastReset, now, util.QuotaWindow) {
		effectiveUsed = 0
	}
	if effectiveUsed >= plan.DailyGenerationQuota {
		return Decision{
			Allowed:      false,
			Reason:       "daily generation quota exhausted",
			CurrentUsage: effectiveUsed,
			Limit:        plan.DailyGenerationQuota,
			ResetIn:      util.TimeUntilReset(lastReset, now, util.QuotaWindow),
		}
	}
	return Decision{
		Allowed:      true,
		CurrentUsage: effectiveUsed,
		Limit:        plan.DailyGenerationQuota,
	}
}

// IncrementDailyQuota commits one unit of generation usage. Called only after
// the gated action succeeded, so a failed generation never consumes quota.
func (s *QuotaService) IncrementDailyQuota(userID int) error {
	_, _, lastReset, err := s.store.GetQuotaState(userID)
	if err != nil {
		return err
	}
	now := s.now()
	return s.store.IncrementDailyQuota(userID, util.WindowElapsed(lastReset, now, util.QuotaWindow), now)
}

// CheckDownloadLimit gates exam downloads on tier capability and the download
// cap.
func (s *QuotaService) CheckDownloadLimit(userID int) (Decision, error) {
	tier, _, _, err := s.store.GetQuotaState(userID)
	if err != nil {
		return Decision{}, err
	}
	plan := PlanForTier(tier)
	if !plan.CanDownload {
		return Decision{
			Allowed: false,
			Reason:  "downloads not available on this plan",
			Limit:   0,
		}, nil
	}

	count, err := s.store.CountDownloads(userID)
	if err != nil {
		return Decision{}, err
	}
	if count >= plan.MaxDownloads {
		return Decision{
			Allowed:      false,
			Reason:       "download limit reached",
			CurrentUsage: count,
			Limit:        plan.MaxDownloads,
		}, nil
	}
	return Decision{Allowed: true, CurrentUsage: count, Limit: plan.MaxDownloads}, nil
}

// RecordDownload consumes a download slot, idempotently per (user, exam).
func (s *QuotaService) RecordDownload(userID int, examID string) error {
	return s.store.InsertDownload(userID, examID)
}

// RemoveDownload frees the slot.
func (s *QuotaService) RemoveDownload(userID int, examID string) error {
	return s.store.DeleteDownload(userID, examID)
}

// Usage is the full usage report for the caller's dashboard.
type Usage struct {
	Plan        string      `json:"plan"`
	Daily       UsageBucket `json:"daily"`
	ActiveExams UsageBucket `json:"activeExams"`
	Downloads   UsageBucket `json:"downloads"`
}

type UsageBucket struct {
	Count       int     `json:"count"`
	Limit       int     `json:"limit"`
	Remaining   int     `json:"remaining"`
	ResetIn     float64 `json:"resetIn,omitempty"`
	CanDownload *bool   `json:"canDownload,omitempty"`
}

// GetUsage assembles the current usage snapshot across all quota dimensions.
func (s *QuotaService) GetUsage(userID int) (Usage, error) {
	tier, used, lastReset, err := s.store.GetQuotaState(userID)
	if err != nil {
		return Usage{}, err
	}
	plan := PlanForTier(tier)
	now := s.now()

	effectiveUsed := used
	if util.WindowElapsed(lastReset, now, util.QuotaWindow) {
		effectiveUsed = 0
	}

	active, err := s.store.CountActiveExams(userID)
	if err != nil {
		return Usage{}, err
	}
	downloads, err := s.store.CountDownloads(userID)
	if err != nil {
		return Usage{}, err
	}

	canDownload := plan.CanDownload
	return Usage{
		Plan: plan.Name,
		Daily: UsageBucket{
			Count:     effectiveUsed,
			Limit:     plan.DailyGenerationQuota,
			Remaining: remaining(plan.DailyGenerationQuota, effectiveUsed),
			ResetIn:   util.TimeUntilReset(lastReset, now, util.QuotaWindow).Seconds(),
		},
		ActiveExams: UsageBucket{
			Count:     active,
			Limit:     plan.MaxActiveExams,
			Remaining: remaining(plan.MaxActiveExams, active),
		},
		Downloads: UsageBucket{
			Count:       downloads,
			Limit:       plan.MaxDownloads,
			Remaining:   remaining(plan.MaxDownloads, downloads),
			CanDownload: &canDownload,
		},
	}, nil
}

func remaining(limit, used int) int {
	if limit == Unlimited {
		return Unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
