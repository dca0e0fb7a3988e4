package repository

import (
	"context"
	"errors"
	"fmt"

	"photo-points-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PhotoRepository handles document store operations for photos
type PhotoRepository struct {
	photos *mongo.Collection
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *mongo.Database) *PhotoRepository {
	return &PhotoRepository{photos: db.Collection(photosCollection)}
}

// Create inserts a new photo record, ErrDuplicate if the id is taken
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	_, err := r.photos.InsertOne(ctx, photo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("photo %s: %w", photo.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	var photo models.Photo
	err := r.photos.FindOne(ctx, bson.M{"_id": id}).Decode(&photo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("photo not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &photo, nil
}

// Exists checks if a photo record exists
func (r *PhotoRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.photos.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check photo existence: %w", err)
	}
	return n > 0, nil
}

// Delete removes a photo record
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.photos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// IncrementLikes adds one like and returns the updated photo
func (r *PhotoRepository) IncrementLikes(ctx context.Context, id string) (*models.Photo, error) {
	return r.incLikes(ctx, bson.M{"_id": id}, 1)
}

// DecrementLikes removes one like, ErrZeroLikes if the count is already zero
func (r *PhotoRepository) DecrementLikes(ctx context.Context, id string) (*models.Photo, error) {
	photo, err := r.incLikes(ctx, bson.M{"_id": id, "photo_likes": bson.M{"$gt": 0}}, -1)
	if err != nil && errors.Is(err, ErrNotFound) {
		exists, existsErr := r.Exists(ctx, id)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return nil, fmt.Errorf("photo %s: %w", id, ErrZeroLikes)
		}
	}
	return photo, err
}

func (r *PhotoRepository) incLikes(ctx context.Context, filter bson.M, delta int) (*models.Photo, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var photo models.Photo
	err := r.photos.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"photo_likes": delta}}, opts).Decode(&photo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("photo not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update photo likes: %w", err)
	}
	return &photo, nil
}

// IncrementViews adds one view to a photo, missing photos are ignored
func (r *PhotoRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.photos.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"photo_views": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// ListByOwnerAtLocations retrieves the owner's photos taken at any of the given locations
func (r *PhotoRepository) ListByOwnerAtLocations(ctx context.Context, owner string, locationIDs []string) ([]models.Photo, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"photo_owner":        owner,
		"google_location_id": bson.M{"$in": locationIDs},
	}
	cursor, err := r.photos.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	var photos []models.Photo
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos: %w", err)
	}
	return photos, nil
}

// LocationIDsByOwner returns the distinct locations the owner has posted photos at
func (r *PhotoRepository) LocationIDsByOwner(ctx context.Context, owner string) ([]string, error) {
	values, err := r.photos.Distinct(ctx, "google_location_id", bson.M{"photo_owner": owner})
	if err != nil {
		return nil, fmt.Errorf("failed to list photo locations: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ForEach calls fn for every photo record
func (r *PhotoRepository) ForEach(ctx context.Context, fn func(*models.Photo) error) error {
	cursor, err := r.photos.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to scan photos: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var photo models.Photo
		if err := cursor.Decode(&photo); err != nil {
			return fmt.Errorf("failed to decode photo: %w", err)
		}
		if err := fn(&photo); err != nil {
			return err
		}
	}
	return cursor.Err()
}
