package websocket

import "errors"

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrWriteBufferFull  = errors.New("write buffer full, message dropped")
	ErrInvalidJSON      = errors.New("invalid JSON data")
)
