package configs

import "time"

// Cache configures the read-through campaign cache. Size 0 disables it.
type Cache struct {
	Size int64         `env:"SIZE" envDefault:"10000"`
	TTL  time.Duration `env:"TTL" envDefault:"30s"`
}
