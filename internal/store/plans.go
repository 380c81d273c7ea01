package store

import (
	"context"
	"errors"
	"sort"

	"planner/internal/gateway"
	"planner/internal/model"

	log "github.com/sirupsen/logrus"
)

func (s *Store) Plans() []model.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Plan{}, s.plans...)
}

// CurrentPlan is the plan last loaded or saved, or nil.
func (s *Store) CurrentPlan() *model.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil
	}
	p := *s.plan
	return &p
}

func (s *Store) FetchPlans(ctx context.Context, r gateway.PlanRange) error {
	s.mu.Lock()
	gen, prev := s.plansSlice.begin()
	s.mu.Unlock()

	plans, err := s.api.ListPlans(ctx, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.plansSlice.settle(ctx, gen, prev, err) {
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
	s.plans = plans
	return nil
}

// FetchPlan loads the plan of one day. A day without a plan clears the
// current plan and returns the not-found error.
func (s *Store) FetchPlan(ctx context.Context, date string) (model.Plan, error) {
	s.mu.Lock()
	s.planGen++
	gen := s.planGen
	s.mu.Unlock()

	p, err := s.api.GetPlan(ctx, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.planGen || ctx.Err() != nil {
		if err == nil {
			err = ctx.Err()
		}
		return p, err
	}
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			s.plan = nil
		}
		return model.Plan{}, err
	}
	s.plan = &p
	s.upsertPlanLocked(p)
	return p, nil
}

// SavePlan updates the plan of date, creating it when the day has none.
func (s *Store) SavePlan(ctx context.Context, date string, hours model.PlanUpdate) (model.Plan, error) {
	epoch := s.begin()
	p, err := s.api.UpdatePlan(ctx, date, hours)
	if errors.Is(err, gateway.ErrNotFound) {
		p, err = s.api.CreatePlan(ctx, model.PlanCreate{
			Date:        date,
			SleepTime:   hours.SleepTime,
			CommuteTime: hours.CommuteTime,
			WorkTime:    hours.WorkTime,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.landedLocked(ctx, epoch) {
		if err == nil {
			err = ctx.Err()
		}
		return p, err
	}
	if err != nil {
		s.failLocked("Failed to save plan", err, log.Fields{"date": date})
		return model.Plan{}, err
	}
	s.planGen++
	s.plan = &p
	s.upsertPlanLocked(p)
	if p.Overbooked() {
		s.noticeLocked(LevelInfo, "Day is overbooked", "Fixed hours exceed 24 hours")
	} else {
		s.noticeLocked(LevelSuccess, "Plan saved", p.Date)
	}
	return p, nil
}

func (s *Store) upsertPlanLocked(p model.Plan) {
	for i := range s.plans {
		if s.plans[i].Date == p.Date {
			s.plans[i] = p
			return
		}
	}
	s.plans = append(s.plans, p)
	sort.Slice(s.plans, func(i, j int) bool { return s.plans[i].Date < s.plans[j].Date })
}
