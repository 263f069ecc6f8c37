package cache

type Config struct {
	URI          string
	ThumbnailTTL int64 `yaml:"thumbnail_ttl_in_s"`
}
