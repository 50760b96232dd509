package tgui

import (
	"errors"
	"fmt"
)

// Telegram Bot API limits.
const (
	// MaxCallbackDataLen is the callback_data size limit in bytes.
	MaxCallbackDataLen = 64
	// MaxCaptionLen is the photo/document caption limit in runes.
	MaxCaptionLen = 1024
	// MaxTextLen is the message text limit in runes.
	MaxTextLen = 4096
	// MaxButtonText keeps inline button labels readable on phones.
	MaxButtonText = 64
)

var ErrCallbackDataTooLong = errors.New("tgui: callback_data too long")

// CheckCallbackData reports whether data fits into a callback button.
func CheckCallbackData(data string) error {
	if len(data) > MaxCallbackDataLen {
		return fmt.Errorf("%w: %d bytes", ErrCallbackDataTooLong, len(data))
	}
	return nil
}
