package model

import "time"

type Board struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	UserID      int       `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Groups      []Group   `json:"groups"`
}

// Group is a column of a board.
type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	BoardID   int       `json:"board_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Board) Clone() Board {
	c := b
	if b.Description != nil {
		d := *b.Description
		c.Description = &d
	}
	if b.Groups != nil {
		c.Groups = append([]Group(nil), b.Groups...)
	}
	return c
}

// Group looks up a column of the board by id.
func (b Board) Group(id int) (Group, bool) {
	for _, g := range b.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

type BoardCreate struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type GroupCreate struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color,omitempty"`
	Order *int   `json:"order,omitempty"`
}
