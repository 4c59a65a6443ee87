package service

import "errors"

var (
	ErrNotFound       = errors.New("error not found")
	ErrInvalidHolding = errors.New("error invalid holding")
	ErrInvalidAlert   = errors.New("error invalid price alert")
	ErrEmptyPortfolio = errors.New("error empty portfolio")
	ErrUnknownInsight = errors.New("error unknown insight")
)
