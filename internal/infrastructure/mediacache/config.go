package mediacache

type Config struct {
	Dir          string `yaml:"dir"`
	MaxPhotoSize int64  `yaml:"max_photo_size_in_bytes"`
	MaxAudioSize int64  `yaml:"max_audio_size_in_bytes"`
}
