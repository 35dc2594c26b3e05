package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateMessageBody validates inbound or outbound message text.
func ValidateMessageBody(body string) error {
	if len(body) == 0 {
		return errors.New("body cannot be empty")
	}
	if len(body) > 65536 {
		return errors.New("body exceeds maximum length")
	}
	if !utf8.ValidString(body) {
		return errors.New("body must be valid UTF-8")
	}
	return nil
}

// ValidateChatID validates a conversation key.
func ValidateChatID(id string) error {
	if len(id) == 0 {
		return errors.New("chat ID cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("chat ID exceeds maximum length")
	}
	return nil
}

// ValidateMessageID validates a gateway message identifier.
func ValidateMessageID(id string) error {
	if len(id) == 0 {
		return errors.New("message ID cannot be empty")
	}
	if len(id) > 256 {
		return errors.New("message ID exceeds maximum length")
	}
	return nil
}
