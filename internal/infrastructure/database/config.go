package database

type Config struct {
	URI               string
	DBName            string `yaml:"db_name"`
	ConnectionTimeout int64  `yaml:"connection_timeout_in_ms"`
	QueryTimeout      int64  `yaml:"query_timeout_in_ms"`
	// WriteTimeout bounds waypoint inserts; zero leaves them to the driver defaults.
	WriteTimeout int64 `yaml:"write_timeout_in_ms"`
}
