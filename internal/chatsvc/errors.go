package chatsvc

import "errors"

// Typed result variants for chat/save/personalize (§4.8, §7).
var (
	ErrInvalidRequest   = errors.New("chatsvc: invalid request")
	ErrMessageTooLong   = errors.New("chatsvc: message too long")
	ErrInvalidSessionID = errors.New("chatsvc: invalid session id")
	ErrUnauthorized     = errors.New("chatsvc: unauthorized")
	ErrRateLimited      = errors.New("chatsvc: rate limited")
	ErrServiceUnavailable = errors.New("chatsvc: service unavailable")
	ErrRequestTimeout   = errors.New("chatsvc: request timeout")
)
