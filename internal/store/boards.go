package store

import (
	"context"

	"planner/internal/model"

	log "github.com/sirupsen/logrus"
)

func (s *Store) Boards() []model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Board, len(s.boards))
	for i, b := range s.boards {
		out[i] = b.Clone()
	}
	return out
}

// CurrentBoard returns a copy of the selected board, or nil.
func (s *Store) CurrentBoard() *model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.boardIndexLocked(s.boardID); i >= 0 {
		b := s.boards[i].Clone()
		return &b
	}
	return nil
}

func (s *Store) boardIndexLocked(id int) int {
	if id == 0 {
		return -1
	}
	for i, b := range s.boards {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// ensureBoardLocked keeps the selection valid, falling back to the first board.
func (s *Store) ensureBoardLocked() {
	if s.boardIndexLocked(s.boardID) >= 0 {
		return
	}
	s.boardID = 0
	if len(s.boards) > 0 {
		s.boardID = s.boards[0].ID
	}
}

// FetchBoards loads the board list and selects the first board when nothing
// valid is selected.
func (s *Store) FetchBoards(ctx context.Context) error {
	s.mu.Lock()
	gen, prev := s.boardsSlice.begin()
	s.mu.Unlock()

	boards, err := s.api.ListBoards(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.boardsSlice.settle(ctx, gen, prev, err) {
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
	s.boards = boards
	s.ensureBoardLocked()
	s.logger.WithFields(log.Fields{"count": len(boards), "board_id": s.boardID}).Debug("boards fetched")
	return nil
}

// SelectBoard fetches a board and makes it current.
func (s *Store) SelectBoard(ctx context.Context, id int) (model.Board, error) {
	return s.loadBoard(ctx, id, true)
}

func (s *Store) loadBoard(ctx context.Context, id int, selectIt bool) (model.Board, error) {
	s.mu.Lock()
	s.boardGen++
	gen := s.boardGen
	s.mu.Unlock()

	b, err := s.api.GetBoard(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return model.Board{}, err
	}
	if gen != s.boardGen || ctx.Err() != nil {
		if ctx.Err() != nil {
			return model.Board{}, ctx.Err()
		}
		return b, nil
	}
	if i := s.boardIndexLocked(b.ID); i >= 0 {
		s.boards[i] = b
	} else {
		s.boards = append(s.boards, b)
	}
	if selectIt {
		s.boardID = b.ID
	}
	return b.Clone(), nil
}

func (s *Store) CreateBoard(ctx context.Context, req model.BoardCreate) (model.Board, error) {
	epoch := s.begin()
	b, err := s.api.CreateBoard(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.landedLocked(ctx, epoch) {
		if err == nil {
			err = ctx.Err()
		}
		return b, err
	}
	if err != nil {
		s.failLocked("Failed to create board", err, log.Fields{"name": req.Name})
		return model.Board{}, err
	}
	s.boards = append(s.boards, b)
	s.ensureBoardLocked()
	s.noticeLocked(LevelSuccess, "Board created", b.Name)
	return b.Clone(), nil
}

func (s *Store) DeleteBoard(ctx context.Context, id int) error {
	epoch := s.begin()
	err := s.api.DeleteBoard(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.landedLocked(ctx, epoch) {
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
	if err != nil {
		s.failLocked("Failed to delete board", err, log.Fields{"board_id": id})
		return err
	}
	if i := s.boardIndexLocked(id); i >= 0 {
		s.boards = append(s.boards[:i], s.boards[i+1:]...)
	}
	s.ensureBoardLocked()
	s.noticeLocked(LevelSuccess, "Board deleted", "")
	return nil
}

// CreateGroup appends a column to a loaded board, then refetches that board.
// The selection is left alone. Failures are logged and queued as a notice;
// nothing is retried.
func (s *Store) CreateGroup(ctx context.Context, boardID int, name, color string) (model.Group, error) {
	s.mu.Lock()
	i := s.boardIndexLocked(boardID)
	if i < 0 {
		s.mu.Unlock()
		return model.Group{}, ErrBoardNotFound
	}
	order := len(s.boards[i].Groups)
	epoch := s.epoch
	s.mu.Unlock()

	g, err := s.api.CreateGroup(ctx, boardID, model.GroupCreate{Name: name, Color: color, Order: &order})
	if err != nil {
		s.mu.Lock()
		if s.landedLocked(ctx, epoch) {
			s.failLocked("Failed to create group", err, log.Fields{"board_id": boardID, "name": name})
		}
		s.mu.Unlock()
		return model.Group{}, err
	}

	if _, err := s.loadBoard(ctx, boardID, false); err != nil {
		s.mu.Lock()
		if s.landedLocked(ctx, epoch) {
			s.failLocked("Failed to refresh board", err, log.Fields{"board_id": boardID})
		}
		s.mu.Unlock()
		return g, nil
	}

	s.mu.Lock()
	if s.landedLocked(ctx, epoch) {
		s.noticeLocked(LevelSuccess, "Group created", g.Name)
	}
	s.mu.Unlock()
	return g, nil
}
