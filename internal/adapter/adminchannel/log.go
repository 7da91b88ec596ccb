package adminchannel

import (
	"context"

	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
)

// LogChannel is the default AdminChannel: it writes every alert through the
// structured logger at warn level. Swapping it for a paging/Slack
// integration means implementing the same one-method interface.
type LogChannel struct {
	log logger.Logger
}

func NewLogChannel(log logger.Logger) *LogChannel {
	return &LogChannel{log: log}
}

func (c *LogChannel) Alert(ctx context.Context, kind string, payload map[string]any) error {
	args := make([]any, 0, len(payload)*2+2)
	args = append(args, "kind", kind)
	for k, v := range payload {
		args = append(args, k, v)
	}
	c.log.Warn(ctx, "admin alert", args...)
	return nil
}
