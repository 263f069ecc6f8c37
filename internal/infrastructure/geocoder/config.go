package geocoder

type Config struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	Language  string `yaml:"language"`
	Timeout   int64  `yaml:"timeout_in_ms"`
}
