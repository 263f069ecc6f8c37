// Package projection shapes waypoints for the cards, grid, list and map screens.
package projection

import (
	"fmt"

	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/model"
)

type View string

const (
	ViewCards View = "cards"
	ViewGrid  View = "grid"
	ViewList  View = "list"
)

// ParseView maps a query value to a view, defaulting to cards.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewCards:
		return ViewCards, nil
	case ViewGrid:
		return ViewGrid, nil
	case ViewList:
		return ViewList, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Project builds the listing for view. baseURL prefixes thumbnail links.
func Project(waypoints []model.Waypoint, view View, baseURL string) dto.Listing {
	listing := dto.Listing{View: string(view), Total: len(waypoints)}

	switch view {
	case ViewGrid:
		listing.Grid = make([]dto.GridTile, 0, len(waypoints))
		for i := range waypoints {
			listing.Grid = append(listing.Grid, dto.GridTile{
				ID:           waypoints[i].ID,
				Title:        waypoints[i].Title,
				ThumbnailURL: fmt.Sprintf("%s/waypoints/%s/thumbnail/%s", baseURL, waypoints[i].ID, model.MediaBack),
			})
		}
	case ViewList:
		listing.List = make([]dto.ListRow, 0, len(waypoints))
		for i := range waypoints {
			listing.List = append(listing.List, dto.ListRow{
				ID:           waypoints[i].ID,
				Title:        waypoints[i].Title,
				LocationName: waypoints[i].LocationName,
				Timestamp:    waypoints[i].Timestamp,
			})
		}
	default:
		listing.Cards = make([]dto.Card, 0, len(waypoints))
		for i := range waypoints {
			listing.Cards = append(listing.Cards, ToCard(&waypoints[i], baseURL))
		}
	}

	return listing
}

// ToCard links media through the API's presigning redirect under baseURL
// because the bucket itself is private.
func ToCard(wp *model.Waypoint, baseURL string) dto.Card {
	tags := wp.Tags
	if tags == nil {
		tags = []string{}
	}

	return dto.Card{
		ID:            wp.ID,
		Title:         wp.Title,
		LocationName:  wp.LocationName,
		Latitude:      wp.Latitude,
		Longitude:     wp.Longitude,
		BackPhotoURL:  mediaURL(baseURL, wp, wp.BackPhoto, model.MediaBack),
		FrontPhotoURL: mediaURL(baseURL, wp, wp.FrontPhoto, model.MediaFront),
		AudioURL:      mediaURL(baseURL, wp, wp.Audio, model.MediaAudio),
		Tags:          tags,
		Timestamp:     wp.Timestamp,
	}
}

func mediaURL(baseURL string, wp *model.Waypoint, ref *model.MediaRef, kind string) string {
	if ref == nil {
		return ""
	}

	return fmt.Sprintf("%s/waypoints/%s/media/%s", baseURL, wp.ID, kind)
}
