package obs

import (
	"context"
	"log"
	"time"
)

// Time logs the duration of an operation when the returned func is deferred.
//
//	defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)

	return func(errp *error) {
		ms := float64(time.Since(start).Microseconds()) / 1000

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%.3fms err=%v", reqID, name, ms, *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%.3fms", reqID, name, ms)
	}
}
