package minio

type ClientConfig struct {
	AccessKey     string
	SecretKey     string
	Endpoint      string `yaml:"endpoint"`
	PublicAddress string `yaml:"public_address"`
	Secure        bool   `yaml:"secure"`
}

type UploaderConfig struct {
	Timeout int64  `yaml:"timeout_in_ms"`
	Bucket  string `yaml:"bucket"`
}

type RemoverConfig struct {
	Timeout int64 `yaml:"timeout_in_ms"`
}

type ResolverConfig struct {
	Timeout int64 `yaml:"timeout_in_ms"`
	Expiry  int64 `yaml:"presign_expiry_in_s"`
}
