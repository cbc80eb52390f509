package recognition

import (
	"errors"
	"fmt"
)

// Cause is the error tag reported by a capability.
type Cause string

const (
	CauseNoSpeech          Cause = "no-speech"
	CauseAudioCapture      Cause = "audio-capture"
	CauseNotAllowed        Cause = "not-allowed"
	CauseNetwork           Cause = "network"
	CauseServiceNotAllowed Cause = "service-not-allowed"
	CauseAborted           Cause = "aborted"
)

var (
	// ErrUnavailable means the environment has no speech recognition support.
	ErrUnavailable = errors.New("speech recognition not supported in this environment")

	// ErrStartFailed means the capability refused to start listening.
	ErrStartFailed = errors.New("failed to start speech recognition, please try again")
)

// Error is a capability failure mapped to a human-readable message.
type Error struct {
	Cause Cause
}

func (e *Error) Error() string {
	switch e.Cause {
	case CauseNoSpeech:
		return "No speech detected. Please speak clearly and try again."
	case CauseAudioCapture:
		return "No microphone detected. Please check your microphone connection."
	case CauseNotAllowed:
		return "Microphone access denied. Please allow microphone permissions and try again."
	case CauseNetwork:
		return "Network error. Please check your internet connection."
	case CauseServiceNotAllowed:
		return "Speech recognition service not available. Please try again later."
	default:
		return fmt.Sprintf("Speech recognition error: %s. Please try again.", e.Cause)
	}
}

// CauseOf extracts the capability cause from err, if any.
func CauseOf(err error) (Cause, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Cause, true
	}
	return "", false
}
