package model

import "time"

const DefaultTitle = "Waypoint"

type Waypoint struct {
	ID           string    `bson:"_id"           json:"id"`
	UserID       string    `bson:"user_id"       json:"user_id"`
	BackPhoto    *MediaRef `bson:"back_photo"    json:"back_photo"`
	FrontPhoto   *MediaRef `bson:"front_photo"   json:"front_photo"`
	Audio        *MediaRef `bson:"audio"         json:"audio"`
	Latitude     float64   `bson:"latitude"      json:"latitude"`
	Longitude    float64   `bson:"longitude"     json:"longitude"`
	LocationName string    `bson:"location_name" json:"location_name"`
	Title        string    `bson:"title"         json:"title"`
	Tags         []string  `bson:"tags"          json:"tags"`
	Timestamp    time.Time `bson:"timestamp"     json:"timestamp"`
}

// MediaRef points to a blob that was uploaded before the document was written.
type MediaRef struct {
	Bucket      string `bson:"bucket"       json:"-"`
	Key         string `bson:"key"          json:"-"`
	URL         string `bson:"url"          json:"url"`
	ContentType string `bson:"content_type" json:"content_type"`
	Size        int64  `bson:"size"         json:"size"`
}

// Media returns the ref for a media kind name (back, front, audio).
func (w *Waypoint) Media(kind string) *MediaRef {
	switch kind {
	case MediaBack:
		return w.BackPhoto
	case MediaFront:
		return w.FrontPhoto
	case MediaAudio:
		return w.Audio
	default:
		return nil
	}
}

// Refs lists the present media refs in upload order.
func (w *Waypoint) Refs() []*MediaRef {
	refs := make([]*MediaRef, 0, 3)
	for _, ref := range []*MediaRef{w.BackPhoto, w.FrontPhoto, w.Audio} {
		if ref != nil {
			refs = append(refs, ref)
		}
	}

	return refs
}

const (
	MediaBack  = "back"
	MediaFront = "front"
	MediaAudio = "audio"
)
