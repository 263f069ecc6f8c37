package location

const (
	DefaultTimeout   = 10000
	DefaultMaxFixAge = 30
)

type Config struct {
	Timeout   int64 `yaml:"timeout_in_ms"`
	MaxFixAge int64 `yaml:"max_fix_age_in_s"`
}
