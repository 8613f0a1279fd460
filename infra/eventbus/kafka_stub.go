//go:build !kafka
// +build !kafka

package eventbus

import (
	"fmt"
	"log/slog"

	"github.com/wanjalab/pesaflow/pkg/eventbus"
)

// NewWithKafka is the stub used when the binary is built without the kafka
// tag. Selecting the kafka driver in config then fails fast at startup.
func NewWithKafka(brokers, topic, group string, logger *slog.Logger) (eventbus.Bus, error) {
	return nil, fmt.Errorf("kafka event bus: binary built without kafka support (use -tags kafka)")
}
