package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-points-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles document store operations for users
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{users: db.Collection(usersCollection)}
}

// Create inserts a new user, ErrDuplicate if the email is taken
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// AddSessionKey adds a session key and refreshes the last accessed time
func (r *UserRepository) AddSessionKey(ctx context.Context, email, key string, at time.Time) error {
	update := bson.M{
		"$addToSet": bson.M{"user_session_keys": key},
		"$set":      bson.M{"user_last_accessed": at},
	}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": email}, update)
	if err != nil {
		return fmt.Errorf("failed to add session key: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return nil
}

// TouchSession refreshes the last accessed time if key is a live session key of the user.
// The check and the refresh are a single document update.
func (r *UserRepository) TouchSession(ctx context.Context, email, key string, at time.Time) (*models.User, error) {
	filter := bson.M{"_id": email, "user_session_keys": key}
	update := bson.M{"$set": bson.M{"user_last_accessed": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("session not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}
	return &user, nil
}

// ClearSessions removes every session key of the user
func (r *UserRepository) ClearSessions(ctx context.Context, email string) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$unset": bson.M{"user_session_keys": ""}})
	if err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}

// PurgeInactive clears session keys of users not seen since before
func (r *UserRepository) PurgeInactive(ctx context.Context, before time.Time) (int64, error) {
	filter := bson.M{
		"user_last_accessed": bson.M{"$lt": before},
		"user_session_keys":  bson.M{"$exists": true},
	}
	res, err := r.users.UpdateMany(ctx, filter, bson.M{"$unset": bson.M{"user_session_keys": ""}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge inactive sessions: %w", err)
	}
	return res.ModifiedCount, nil
}

// SetPreferences replaces the user's profile attributes
func (r *UserRepository) SetPreferences(ctx context.Context, email string, prefs models.Preferences, pushToken *string) error {
	set := bson.M{
		"user_age":    prefs.Age,
		"user_gender": prefs.Gender,
		"user_size":   prefs.Size,
		"user_name":   prefs.Name,
	}
	if pushToken != nil {
		set["push_token"] = *pushToken
	}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set preferences: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return nil
}

// AddPhoto records photoID as uploaded by the user
func (r *UserRepository) AddPhoto(ctx context.Context, email, photoID string) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$addToSet": bson.M{"user_photos": photoID}})
	if err != nil {
		return fmt.Errorf("failed to add photo to user: %w", err)
	}
	return nil
}

// RemovePhoto removes photoID from the user's uploads, false if it was not there
func (r *UserRepository) RemovePhoto(ctx context.Context, email, photoID string) (bool, error) {
	return r.pullMember(ctx, email, "user_photos", photoID)
}

// AddLike records a like, false if the user already liked the photo
func (r *UserRepository) AddLike(ctx context.Context, email, photoID string) (bool, error) {
	return r.addMember(ctx, email, "user_photo_likes", photoID)
}

// RemoveLike removes a like, false if the user had not liked the photo
func (r *UserRepository) RemoveLike(ctx context.Context, email, photoID string) (bool, error) {
	return r.pullMember(ctx, email, "user_photo_likes", photoID)
}

// AddPetition records a petition, false if the user already petitioned the location
func (r *UserRepository) AddPetition(ctx context.Context, email, locationID string) (bool, error) {
	return r.addMember(ctx, email, "user_petitioned_locations", locationID)
}

// RemovePetition withdraws a recorded petition
func (r *UserRepository) RemovePetition(ctx context.Context, email, locationID string) (bool, error) {
	return r.pullMember(ctx, email, "user_petitioned_locations", locationID)
}

func (r *UserRepository) addMember(ctx context.Context, email, field, value string) (bool, error) {
	filter := bson.M{"_id": email, field: bson.M{"$ne": value}}
	res, err := r.users.UpdateOne(ctx, filter, bson.M{"$addToSet": bson.M{field: value}})
	if err != nil {
		return false, fmt.Errorf("failed to add to %s: %w", field, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *UserRepository) pullMember(ctx context.Context, email, field, value string) (bool, error) {
	filter := bson.M{"_id": email, field: value}
	res, err := r.users.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{field: value}})
	if err != nil {
		return false, fmt.Errorf("failed to remove from %s: %w", field, err)
	}
	return res.ModifiedCount > 0, nil
}
