package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/internal/settings"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
)

// dayLabelFormat matches the short labels shown on the shop-floor dashboard.
const dayLabelFormat = "Jan 2"

// weeklyWindowDays is the size of the per-operator activity window.
const weeklyWindowDays = 7

// Service derives consumption counters from the audit trail. Counters are
// never stored; a reset only moves the cutoff date forward.
type Service interface {
	Consumption(ctx context.Context) (*ConsumptionReport, error)
	OperatorWeekly(ctx context.Context, operatorID string) (*WeeklyReport, error)
	Reset(ctx context.Context) (time.Time, error)
}

// OperatorConsumption sums the units one operator has taken since the cutoff,
// with a per-calendar-day breakdown of the same entries, oldest day first.
type OperatorConsumption struct {
	OperatorID string      `json:"operatorId"`
	TotalTaken int         `json:"totalTaken"`
	DailyData  []DayBucket `json:"dailyData"`
}

// ConsumptionReport is the full leaderboard, highest consumer first.
type ConsumptionReport struct {
	Since     *time.Time            `json:"since,omitempty"`
	Operators []OperatorConsumption `json:"operators"`
}

// DayBucket counts one day of take activity.
type DayBucket struct {
	Date  string `json:"date"`
	Taken int    `json:"taken"`
}

// WeeklyReport is a fixed seven-day window, oldest day first, ending today.
// Days without activity are present with a zero count.
type WeeklyReport struct {
	OperatorID string      `json:"operatorId"`
	Days       []DayBucket `json:"days"`
}

type service struct {
	audit    auditlog.Service
	settings settings.Service
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the consumption aggregator.
func NewService(audit auditlog.Service, sett settings.Service, logg *logger.Logger) (Service, error) {
	if audit == nil {
		return nil, fmt.Errorf("audit log service required")
	}
	if sett == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{audit: audit, settings: sett, logg: logg, now: time.Now}, nil
}

// Consumption groups take entries newer than the cutoff by operator. Ties in
// the leaderboard keep their relative recency order.
func (s *service) Consumption(ctx context.Context) (*ConsumptionReport, error) {
	since, err := s.settings.StatsStartDate(ctx)
	if err != nil {
		return nil, err
	}

	filter := auditlog.Filter{Action: enums.LogActionTake}
	if since != nil {
		filter.Since = *since
	}
	entries, err := s.audit.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	totals := make(map[string]int, len(entries))
	order := make([]string, 0, len(entries))
	dayTotals := make(map[string]map[string]int, len(entries))
	dayOrder := make(map[string][]string, len(entries))
	for _, entry := range entries {
		if _, seen := totals[entry.OperatorID]; !seen {
			order = append(order, entry.OperatorID)
			dayTotals[entry.OperatorID] = make(map[string]int)
		}
		totals[entry.OperatorID] += abs(entry.QuantityChange)

		label := entry.Timestamp.In(now.Location()).Format(dayLabelFormat)
		if _, seen := dayTotals[entry.OperatorID][label]; !seen {
			dayOrder[entry.OperatorID] = append(dayOrder[entry.OperatorID], label)
		}
		dayTotals[entry.OperatorID][label] += abs(entry.QuantityChange)
	}

	operators := make([]OperatorConsumption, 0, len(order))
	for _, id := range order {
		// entries arrive newest-first; walk the labels backwards so days
		// come out oldest-first
		labels := dayOrder[id]
		daily := make([]DayBucket, 0, len(labels))
		for i := len(labels) - 1; i >= 0; i-- {
			daily = append(daily, DayBucket{Date: labels[i], Taken: dayTotals[id][labels[i]]})
		}
		operators = append(operators, OperatorConsumption{OperatorID: id, TotalTaken: totals[id], DailyData: daily})
	}
	sort.SliceStable(operators, func(i, j int) bool {
		return operators[i].TotalTaken > operators[j].TotalTaken
	})

	return &ConsumptionReport{Since: since, Operators: operators}, nil
}

// OperatorWeekly buckets one operator's takes into the last seven calendar
// days.
func (s *service) OperatorWeekly(ctx context.Context, operatorID string) (*WeeklyReport, error) {
	if operatorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id required")
	}

	now := s.now()
	windowStart := startOfDay(now).AddDate(0, 0, -(weeklyWindowDays - 1))

	entries, err := s.audit.List(ctx, auditlog.Filter{
		OperatorID: operatorID,
		Action:     enums.LogActionTake,
		Since:      windowStart.Add(-time.Second),
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, weeklyWindowDays)
	for _, entry := range entries {
		ts := entry.Timestamp.In(now.Location())
		if ts.Before(windowStart) {
			continue
		}
		counts[ts.Format(dayLabelFormat)] += abs(entry.QuantityChange)
	}

	days := make([]DayBucket, 0, weeklyWindowDays)
	for i := 0; i < weeklyWindowDays; i++ {
		label := windowStart.AddDate(0, 0, i).Format(dayLabelFormat)
		days = append(days, DayBucket{Date: label, Taken: counts[label]})
	}

	return &WeeklyReport{OperatorID: operatorID, Days: days}, nil
}

// Reset moves the consumption cutoff to now.
func (s *service) Reset(ctx context.Context) (time.Time, error) {
	return s.settings.ResetStats(ctx)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
