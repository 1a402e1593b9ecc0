package service

import "errors"

var (
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrNotAdmin       = errors.New("admin privileges required")
	ErrInvalidProduct = errors.New("invalid product")
	ErrInvalidInput   = errors.New("invalid input")
)
