package configs

import (
	"time"

	"cpop-ledger/internal/retry"
)

// Transfer configures the token transfer client. An empty Endpoint selects
// the in-process ledger, which is only meaningful with the memory storage
// driver or for demos.
type Transfer struct {
	Endpoint string        `env:"ENDPOINT"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"5s"`

	RetryInitial     time.Duration `env:"RETRY_INITIAL" envDefault:"200ms"`
	RetryMax         time.Duration `env:"RETRY_MAX" envDefault:"2s"`
	RetryMaxElapsed  time.Duration `env:"RETRY_MAX_ELAPSED" envDefault:"10s"`
	RetryMaxAttempts uint          `env:"RETRY_MAX_ATTEMPTS" envDefault:"5"`
}

// RetryPolicy returns the retry bounds for transfer calls.
func (c Transfer) RetryPolicy() retry.Policy {
	return retry.Policy{
		InitialInterval: c.RetryInitial,
		MaxInterval:     c.RetryMax,
		MaxElapsed:      c.RetryMaxElapsed,
		MaxAttempts:     c.RetryMaxAttempts,
	}
}
