package activity

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyEmotion    = errors.New("emotion label is required")
	ErrEmptyReflection = errors.New("reflection text is required")
	ErrZeroTime        = errors.New("timestamp is required")
)

// CheckUser rejects blank user IDs.
func CheckUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUser
	}
	return nil
}

// NormalizeCheckIn validates a check-in and returns the trimmed label.
func NormalizeCheckIn(userID string, date time.Time, label string) (string, error) {
	if err := CheckUser(userID); err != nil {
		return "", err
	}
	if date.IsZero() {
		return "", ErrZeroTime
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return "", ErrEmptyEmotion
	}
	return label, nil
}

// NormalizeReflection validates a reflection. Text is kept verbatim so its
// length is scored as written.
func NormalizeReflection(userID, text string, createdAt time.Time) error {
	if err := CheckUser(userID); err != nil {
		return err
	}
	if createdAt.IsZero() {
		return ErrZeroTime
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyReflection
	}
	return nil
}

// NormalizeTask validates a task completion.
func NormalizeTask(userID string, completedAt time.Time) error {
	if err := CheckUser(userID); err != nil {
		return err
	}
	if completedAt.IsZero() {
		return ErrZeroTime
	}
	return nil
}
