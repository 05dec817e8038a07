package mindmap

import "errors"

// Failure kinds of Generate. Each message doubles as the text shown to the
// user, so none of them mention internals.
var (
	ErrEmptyInput        = errors.New("your library is empty, add some notes first")
	ErrConfiguration     = errors.New("the AI service is not configured, set an API key")
	ErrEmptyResponse     = errors.New("the AI service returned an empty answer")
	ErrMalformedResponse = errors.New("the AI service returned something that is not a mind map")
	ErrGenerationFailed  = errors.New("organizing your notes failed, please try again later")
)

// Error pairs a failure kind with the underlying cause, which is kept for
// logs. errors.Is matches both.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fail(kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// UserMessage is the single human-readable line shown for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.Error()
	}
	for _, kind := range []error{ErrEmptyInput, ErrConfiguration, ErrEmptyResponse, ErrMalformedResponse, ErrGenerationFailed} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
