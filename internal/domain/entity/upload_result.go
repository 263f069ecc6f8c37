package entity

type UploadResult struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Location string `json:"location"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}
