package search

import (
	"fmt"

	"photo-points-backend/internal/models"
)

const (
	docTypeAdd    = "add"
	docTypeDelete = "delete"

	indexTimeLayout = "2006-01-02T15:04:05Z"
)

// Document is one entry of an index upload batch
type Document struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Hit is one search result
type Hit struct {
	ID     string              `json:"id"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// AddPhoto builds the add document for a photo record
func AddPhoto(photo *models.Photo) (Document, error) {
	taken, err := photo.TakenTime()
	if err != nil {
		return Document{}, fmt.Errorf("invalid capture time for %s: %w", photo.ID, err)
	}

	tags := photo.Tags
	if tags == nil {
		tags = []string{}
	}

	return Document{
		Type: docTypeAdd,
		ID:   photo.ID,
		Fields: map[string]any{
			"photo_id":           photo.ID,
			"photo_owner":        photo.Owner,
			"photo_likes":        photo.Likes,
			"photo_taken_dt":     taken.Format(indexTimeLayout),
			"photo_tags":         tags,
			LatLonField:          photo.LatLon,
			"google_location_id": photo.LocationID,
		},
	}, nil
}

// DeletePhoto builds the delete document for a photo id
func DeletePhoto(id string) Document {
	return Document{Type: docTypeDelete, ID: id}
}
