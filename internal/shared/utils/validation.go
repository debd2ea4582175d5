package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxSourceSize  = 256 * 1024 // one script or stylesheet
	MaxMessageSize = 512 * 1024 // one websocket frame
	MaxEventValue  = 16 * 1024  // value carried by a dispatched event
)

// MaxIDLength bounds node handles and event names
const MaxIDLength = 128

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// EventTypePattern matches DOM event names such as click or keydown
	EventTypePattern = regexp.MustCompile(`^[a-z]+$`)
)

// ValidateSource checks editor text before it reaches the pipeline
func ValidateSource(text, fieldName string) error {
	if len(text) > MaxSourceSize {
		return fmt.Errorf("%s size %d bytes exceeds maximum %d bytes", fieldName, len(text), MaxSourceSize)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%s is not valid UTF-8", fieldName)
	}
	if strings.Contains(text, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// ValidateEvent validates a dispatch request
func ValidateEvent(nodeID, eventType string, value *string) error {
	if err := ValidateID(nodeID, "node_id", true); err != nil {
		return err
	}
	if err := ValidateString(eventType, "event", 1, MaxIDLength, true); err != nil {
		return err
	}
	if !EventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event must be a lowercase DOM event name")
	}
	if value != nil && len(*value) > MaxEventValue {
		return fmt.Errorf("value size %d bytes exceeds maximum %d bytes", len(*value), MaxEventValue)
	}
	return nil
}
