package media

import (
	"errors"
	"fmt"
)

// Kind classifies why loading a track failed.
type Kind int

const (
	// NotPlayableContent means the URL was recognized but points at
	// something that is not a playable video.
	NotPlayableContent Kind = iota
	// UpstreamFailure covers network errors, bad status codes, unparseable
	// payloads and responses that no longer match the expected API shape.
	UpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case NotPlayableContent:
		return "not playable"
	case UpstreamFailure:
		return "upstream failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against a LoadError's kind.
var (
	ErrNotPlayable = errors.New("content is not playable")
	ErrUpstream    = errors.New("upstream failure")
)

// LoadError is returned by resolvers and stream providers.
type LoadError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels so callers never inspect message text.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrNotPlayable:
		return e.Kind == NotPlayableContent
	case ErrUpstream:
		return e.Kind == UpstreamFailure
	}
	return false
}

// NotPlayable builds a NotPlayableContent error.
func NotPlayable(message string, err error) error {
	return &LoadError{Kind: NotPlayableContent, Message: message, Err: err}
}

// Upstream builds an UpstreamFailure error.
func Upstream(message string, err error) error {
	return &LoadError{Kind: UpstreamFailure, Message: message, Err: err}
}

// KindOf returns the kind of the first LoadError in err's chain. Errors that
// carry no kind are treated as upstream failures.
func KindOf(err error) Kind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return UpstreamFailure
}
