package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
)

const usersCollection = "users"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique indexes that make username and email
// uniqueness atomic. They cover inactive records too: a soft-deleted user
// keeps holding its username and email.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_1"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Role         string             `bson:"userType"`
	IsActive     bool               `bson:"is_active"`
	Settings     mongoSettings      `bson:"settings"`
	Features     mongoFeatures      `bson:"features"`
	APIKeys      map[string]string  `bson:"apiKeys"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
	LastLogin    *time.Time         `bson:"last_login"`
}

type mongoSettings struct {
	TwoFAEnabled         bool `bson:"two_fa_enabled"`
	NotificationsEnabled bool `bson:"notifications_enabled"`
}

type mongoFeatures struct {
	SMSCampaigns       bool `bson:"smsCampaigns"`
	ChatbotTranscripts bool `bson:"chatbotTranscripts"`
	AIVideoGeneration  bool `bson:"aiVideoGeneration"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		Settings: mongoSettings{
			TwoFAEnabled:         u.Settings.TwoFAEnabled,
			NotificationsEnabled: u.Settings.NotificationsEnabled,
		},
		Features: mongoFeatures{
			SMSCampaigns:       u.Features.SMSCampaigns,
			ChatbotTranscripts: u.Features.ChatbotTranscripts,
			AIVideoGeneration:  u.Features.AIVideoGeneration,
		},
		APIKeys:   u.APIKeys,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLoginAt,
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Username:     mu.Username,
		Name:         mu.Name,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Role:         mu.Role,
		IsActive:     mu.IsActive,
		Settings: domain.Settings{
			TwoFAEnabled:         mu.Settings.TwoFAEnabled,
			NotificationsEnabled: mu.Settings.NotificationsEnabled,
		},
		Features: domain.Features{
			SMSCampaigns:       mu.Features.SMSCampaigns,
			ChatbotTranscripts: mu.Features.ChatbotTranscripts,
			AIVideoGeneration:  mu.Features.AIVideoGeneration,
		},
		APIKeys:     mu.APIKeys,
		CreatedAt:   mu.CreatedAt,
		UpdatedAt:   mu.UpdatedAt,
		LastLoginAt: mu.LastLogin,
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toMongoUser(user)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyToDomain(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	doc.ID = id
	return doc.toDomain(), nil
}

// duplicateKeyToDomain picks the Conflict error matching the violated
// index. The index name appears in the server's error message.
func duplicateKeyToDomain(err error) error {
	if strings.Contains(err.Error(), "email_1") {
		return domain.ErrEmailExists
	}
	return domain.ErrUsernameExists
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username, "is_active": true})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "is_active": true})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) FindAllActive(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Role != nil {
		set["userType"] = *update.Role
	}
	if update.Settings != nil {
		set["settings"] = mongoSettings{
			TwoFAEnabled:         update.Settings.TwoFAEnabled,
			NotificationsEnabled: update.Settings.NotificationsEnabled,
		}
	}
	if update.Features != nil {
		set["features"] = mongoFeatures{
			SMSCampaigns:       update.Features.SMSCampaigns,
			ChatbotTranscripts: update.Features.ChatbotTranscripts,
			AIVideoGeneration:  update.Features.AIVideoGeneration,
		}
	}
	for k, v := range update.APIKeys {
		set["apiKeys."+k] = v
	}

	var mu mongoUser
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"username": username, "is_active": true},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyToDomain(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

// Deactivate soft-deletes. Intentionally matches inactive users too so the
// operation is idempotent.
func (r *MongoUserRepository) Deactivate(ctx context.Context, username string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) SetAPIKey(ctx context.Context, username, keyType, apiKey string) error {
	return r.setActive(ctx, username, bson.M{"apiKeys." + keyType: apiKey})
}

func (r *MongoUserRepository) SetTwoFA(ctx context.Context, username string, enabled bool) error {
	return r.setActive(ctx, username, bson.M{"settings.two_fa_enabled": enabled})
}

func (r *MongoUserRepository) UpdateLastLogin(ctx context.Context, username string) error {
	return r.setActive(ctx, username, bson.M{"last_login": time.Now().UTC()})
}

func (r *MongoUserRepository) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	return r.setActive(ctx, username, bson.M{"password": hash})
}

func (r *MongoUserRepository) setActive(ctx context.Context, username string, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username, "is_active": true},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
