package configs

// Otel configures trace export. Tracing is off unless Endpoint is set.
type Otel struct {
	// Endpoint is the OTLP/HTTP collector URL, e.g. http://localhost:4318.
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"cpop-ledger"`
}
