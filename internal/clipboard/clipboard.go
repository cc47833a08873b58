// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"

	"reviewdiff/internal/log"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard unavailable")

// writeAll is swapped in tests.
var writeAll = clipboard.WriteAll

func Available() bool {
	return !clipboard.Unsupported
}

func CopyText(text string) error {
	if !Available() {
		return ErrUnsupported
	}
	if err := writeAll(text); err != nil {
		log.ErrorErr(log.CatUI, "clipboard write failed", err)
		return err
	}
	return nil
}
