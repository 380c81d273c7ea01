package store

import (
	"context"

	"planner/internal/model"

	log "github.com/sirupsen/logrus"
)

func (s *Store) Teams() []model.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Team, len(s.teams))
	for i, t := range s.teams {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) CurrentTeam() *model.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.teamIndexLocked(s.teamID); i >= 0 {
		t := s.teams[i].Clone()
		return &t
	}
	return nil
}

func (s *Store) teamIndexLocked(id int) int {
	if id == 0 {
		return -1
	}
	for i, t := range s.teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) ensureTeamLocked() {
	if s.teamIndexLocked(s.teamID) >= 0 {
		return
	}
	s.teamID = 0
	if len(s.teams) > 0 {
		s.teamID = s.teams[0].ID
	}
}

// FetchTeams loads the user's teams and selects the first one when nothing
// valid is selected.
func (s *Store) FetchTeams(ctx context.Context) error {
	s.mu.Lock()
	gen, prev := s.teamsSlice.begin()
	s.mu.Unlock()

	teams, err := s.api.ListTeams(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.teamsSlice.settle(ctx, gen, prev, err) {
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
	s.teams = teams
	s.ensureTeamLocked()
	return nil
}

func (s *Store) SelectTeam(id int) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.teamIndexLocked(id)
	if i < 0 {
		return model.Team{}, ErrTeamNotFound
	}
	s.teamID = id
	return s.teams[i].Clone(), nil
}

func (s *Store) CreateTeam(ctx context.Context, req model.TeamCreate) (model.Team, error) {
	epoch := s.begin()
	t, err := s.api.CreateTeam(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.landedLocked(ctx, epoch) {
		if err == nil {
			err = ctx.Err()
		}
		return t, err
	}
	if err != nil {
		s.failLocked("Failed to create team", err, log.Fields{"name": req.Name})
		return model.Team{}, err
	}
	s.teams = append(s.teams, t)
	s.ensureTeamLocked()
	s.noticeLocked(LevelSuccess, "Team created", t.Name)
	return t.Clone(), nil
}

func (s *Store) AddTeamMember(ctx context.Context, teamID int, req model.MemberCreate) (model.TeamMember, error) {
	epoch := s.begin()
	m, err := s.api.AddTeamMember(ctx, teamID, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.landedLocked(ctx, epoch) {
		if err == nil {
			err = ctx.Err()
		}
		return m, err
	}
	if err != nil {
		s.failLocked("Failed to add member", err, log.Fields{"team_id": teamID})
		return model.TeamMember{}, err
	}
	if i := s.teamIndexLocked(teamID); i >= 0 {
		s.teams[i].Members = append(s.teams[i].Members, m)
	}
	s.noticeLocked(LevelSuccess, "Member added", m.UserEmail)
	return m, nil
}
