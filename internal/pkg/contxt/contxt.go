package contxt

import (
	"context"
	"time"
)

// NewContext returns a context detached from any request, for work started by
// the scheduler or during shutdown. A zero timeout means no deadline.
func NewContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
