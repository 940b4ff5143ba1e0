package segwit

import "github.com/pkg/errors"

var (
	// ErrTruncated means the input ran out before a complete structure
	// was read.
	ErrTruncated = errors.New("truncated input")

	// ErrMalformed is returned by structural checks layered on top of
	// decoding, see StackCheck.
	ErrMalformed = errors.New("malformed structure")
)

// StackCheck is a structural check run against a freshly decoded
// witness stack. A non-nil error fails the decode.
type StackCheck func(*WitnessStack) error

// MaxItemCount rejects stacks with more than n items.
func MaxItemCount(n int) StackCheck {
	return func(ws *WitnessStack) error {
		if len(ws.items) > n {
			return errors.Wrapf(ErrMalformed, "input %d: %d witness items exceeds %d", ws.index, len(ws.items), n)
		}
		return nil
	}
}

// MaxItemSize rejects stacks containing an item longer than n bytes.
func MaxItemSize(n int) StackCheck {
	return func(ws *WitnessStack) error {
		for i, item := range ws.items {
			if len(item) > n {
				return errors.Wrapf(ErrMalformed, "input %d: witness item %d is %d bytes, limit %d", ws.index, i, len(item), n)
			}
		}
		return nil
	}
}
