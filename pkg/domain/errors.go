package domain

import "errors"

var (
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamHTTP      = errors.New("upstream http error")
	ErrUpstreamExhausted = errors.New("upstream exhausted")
	ErrEmptyInput        = errors.New("empty input")
	ErrAttachmentFetch   = errors.New("attachment fetch failed")
	ErrFormatRender      = errors.New("format render failed")
	ErrStoreRead         = errors.New("store read failed")
	ErrUnauthorized      = errors.New("unauthorized")
)
