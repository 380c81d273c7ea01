package gateway

import (
	"context"
	"net/http"
	"strconv"

	"planner/internal/model"
)

func (c *Client) ListBoards(ctx context.Context) ([]model.Board, error) {
	return call[[]model.Board](ctx, c, request{
		op:       "ListBoards",
		method:   http.MethodGet,
		path:     "/boards/",
		fallback: "Failed to fetch boards",
	})
}

func (c *Client) GetBoard(ctx context.Context, id int) (model.Board, error) {
	return call[model.Board](ctx, c, request{
		op:       "GetBoard",
		method:   http.MethodGet,
		path:     "/boards/" + strconv.Itoa(id),
		fallback: "Failed to fetch board",
	})
}

func (c *Client) CreateBoard(ctx context.Context, req model.BoardCreate) (model.Board, error) {
	return call[model.Board](ctx, c, request{
		op:       "CreateBoard",
		method:   http.MethodPost,
		path:     "/boards/",
		body:     req,
		fallback: "Failed to create board",
	})
}

func (c *Client) DeleteBoard(ctx context.Context, id int) error {
	return c.do(ctx, request{
		op:       "DeleteBoard",
		method:   http.MethodDelete,
		path:     "/boards/" + strconv.Itoa(id),
		fallback: "Failed to delete board",
	}, nil)
}

func (c *Client) ListGroups(ctx context.Context, boardID int) ([]model.Group, error) {
	return call[[]model.Group](ctx, c, request{
		op:       "ListGroups",
		method:   http.MethodGet,
		path:     "/boards/" + strconv.Itoa(boardID) + "/groups",
		fallback: "Failed to fetch groups",
	})
}

func (c *Client) CreateGroup(ctx context.Context, boardID int, req model.GroupCreate) (model.Group, error) {
	return call[model.Group](ctx, c, request{
		op:       "CreateGroup",
		method:   http.MethodPost,
		path:     "/boards/" + strconv.Itoa(boardID) + "/groups",
		body:     req,
		fallback: "Failed to create group",
	})
}
