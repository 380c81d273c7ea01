package gateway

import (
	"context"
	"net/http"
	"strconv"

	"planner/internal/model"
)

func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	return call[[]model.Team](ctx, c, request{
		op:       "ListTeams",
		method:   http.MethodGet,
		path:     "/teams/",
		fallback: "Failed to fetch teams",
	})
}

func (c *Client) CreateTeam(ctx context.Context, req model.TeamCreate) (model.Team, error) {
	return call[model.Team](ctx, c, request{
		op:       "CreateTeam",
		method:   http.MethodPost,
		path:     "/teams/",
		body:     req,
		fallback: "Failed to create team",
	})
}

func (c *Client) AddTeamMember(ctx context.Context, teamID int, req model.MemberCreate) (model.TeamMember, error) {
	return call[model.TeamMember](ctx, c, request{
		op:       "AddTeamMember",
		method:   http.MethodPost,
		path:     "/teams/" + strconv.Itoa(teamID) + "/members",
		body:     req,
		fallback: "Failed to add member",
	})
}
