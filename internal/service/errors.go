package service

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUserNotFound     = errors.New("user not found")
	ErrGameNotFound     = errors.New("game not found")
	ErrGameLocked       = errors.New("game has already started")
	ErrInvalidPick      = errors.New("picked team does not play in this game")
	ErrInvalidReference = errors.New("referenced team or game does not exist")
	ErrCrawlerFailed    = errors.New("crawler request failed")
)
