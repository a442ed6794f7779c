package log

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.ErrorStackMarshaler = marshalStack
}

// marshalStack exports the stack captured by cockroachdb/errors.WithStack.
// zerolog calls it for events built with Stack().Err(err).
func marshalStack(err error) interface{} {
	if s := extractStacktrace(err); s != "" {
		return s
	}
	return nil
}

// extractStacktrace walks the cause chain and returns the first recorded stack.
func extractStacktrace(err error) string {
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		safeDetails := errors.GetSafeDetails(e).SafeDetails
		if len(safeDetails) > 0 && safeDetails[0] != "" {
			return safeDetails[0]
		}
	}
	return ""
}
