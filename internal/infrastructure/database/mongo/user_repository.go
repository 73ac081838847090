package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

const userCollection = "users"

// activeUsers is the visibility predicate shared by every lookup. Documents
// written before the active field existed have no value and stay visible.
var activeUsers = bson.M{"active": bson.M{"$ne": false}}

// hiddenUserFields are never returned unless a method asks for the password.
var hiddenUserFields = []string{"password", "createdAt", "active"}

type userDocument struct {
	ID                   bson.ObjectID `bson:"_id,omitempty"`
	FirstName            string        `bson:"firstName"`
	LastName             string        `bson:"lastName"`
	Email                string        `bson:"email"`
	Phone                string        `bson:"phone"`
	Photo                string        `bson:"photo"`
	Role                 string        `bson:"role"`
	Password             string        `bson:"password,omitempty"`
	CreatedAt            time.Time     `bson:"createdAt,omitempty"`
	PasswordChangedAt    *time.Time    `bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string        `bson:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time    `bson:"passwordResetExpires,omitempty"`
	Active               *bool         `bson:"active,omitempty"`
}

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(ctx context.Context, db *DB) (domainUser.Repository, error) {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "passwordResetToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create user indexes: %w", err)
	}

	return &UserRepository{collection: collection}, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domainUser.User, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, false)
}

func (r *UserRepository) FindByIDWithPassword(ctx context.Context, id string) (*domainUser.User, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, true)
}

func (r *UserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*domainUser.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, true)
}

func (r *UserRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domainUser.User, error) {
	return r.findOne(ctx, bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": now},
	}, false)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, withPassword bool) (*domainUser.User, error) {
	opts := options.FindOne()
	if withPassword {
		opts.SetProjection(buildProjection(nil, []string{"createdAt", "active"}))
	} else {
		opts.SetProjection(buildProjection(nil, hiddenUserFields))
	}

	var doc userDocument
	err := r.collection.FindOne(ctx, visible(filter), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, resource.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&doc), nil
}

func (r *UserRepository) Find(ctx context.Context, q *query.Query) ([]*domainUser.User, error) {
	cursor, err := r.collection.Find(ctx, buildFilter(activeUsers, q), buildFindOptions(q, hiddenUserFields...))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]*domainUser.User, 0)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, toUserEntity(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domainUser.User) error {
	if err := u.PrepareSave(true); err != nil {
		return err
	}

	result, err := r.collection.InsertOne(ctx, toUserDocument(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainUser.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	u.ID = objectID.Hex()

	return nil
}

// Save writes the mutable fields of u. The password is only written when
// loaded or changed; createdAt and active are left untouched.
func (r *UserRepository) Save(ctx context.Context, u *domainUser.User) error {
	objectID, err := parseObjectID(u.ID)
	if err != nil {
		return err
	}
	if err := u.PrepareSave(false); err != nil {
		return err
	}

	set := bson.M{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"phone":     u.Phone,
		"photo":     u.Photo,
		"role":      u.Role,
	}
	unset := bson.M{}

	if u.Password != "" {
		set["password"] = u.Password
	}
	if u.PasswordChangedAt != nil {
		set["passwordChangedAt"] = *u.PasswordChangedAt
	}
	if u.PasswordResetToken != "" && u.PasswordResetExpires != nil {
		set["passwordResetToken"] = u.PasswordResetToken
		set["passwordResetExpires"] = *u.PasswordResetExpires
	} else {
		unset["passwordResetToken"] = ""
		unset["passwordResetExpires"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, visible(bson.M{"_id": objectID}), update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainUser.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	if result.MatchedCount == 0 {
		return resource.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, patch resource.Patch) (*domainUser.User, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc userDocument
	err = r.collection.FindOneAndUpdate(
		ctx,
		visible(bson.M{"_id": objectID}),
		bson.M{"$set": bson.M(patch)},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(buildProjection(nil, hiddenUserFields)),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, resource.ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domainUser.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return toUserEntity(&doc), nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, visible(bson.M{"_id": objectID}))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return resource.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, visible(bson.M{"_id": objectID}), bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if result.MatchedCount == 0 {
		return resource.ErrNotFound
	}

	return nil
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"passwordResetExpires": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	return result.ModifiedCount, nil
}

func visible(filter bson.M) bson.M {
	out := bson.M{}
	for k, v := range filter {
		out[k] = v
	}
	for k, v := range activeUsers {
		out[k] = v
	}
	return out
}

func toUserDocument(u *domainUser.User) *userDocument {
	active := u.Active
	return &userDocument{
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Email:                u.Email,
		Phone:                u.Phone,
		Photo:                u.Photo,
		Role:                 u.Role,
		Password:             u.Password,
		CreatedAt:            u.CreatedAt,
		PasswordChangedAt:    u.PasswordChangedAt,
		PasswordResetToken:   u.PasswordResetToken,
		PasswordResetExpires: u.PasswordResetExpires,
		Active:               &active,
	}
}

func toUserEntity(doc *userDocument) *domainUser.User {
	return &domainUser.User{
		ID:                   doc.ID.Hex(),
		FirstName:            doc.FirstName,
		LastName:             doc.LastName,
		Email:                doc.Email,
		Phone:                doc.Phone,
		Photo:                doc.Photo,
		Role:                 doc.Role,
		Password:             doc.Password,
		CreatedAt:            doc.CreatedAt,
		PasswordChangedAt:    doc.PasswordChangedAt,
		PasswordResetToken:   doc.PasswordResetToken,
		PasswordResetExpires: doc.PasswordResetExpires,
		Active:               doc.Active == nil || *doc.Active,
	}
}
