package corpus

import "errors"

var (
	ErrMissingPhrase    = errors.New("sentence has no phrase id")
	ErrMissingSentiment = errors.New("phrase id has no sentiment score")
	ErrMissingSplit     = errors.New("sentence has no split assignment")
	ErrUnknownSplit     = errors.New("unknown split code")
	ErrScoreOutOfRange  = errors.New("sentiment score outside [0, 1]")
	ErrMalformedRow     = errors.New("malformed row")
)
