package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/models"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
)

// accountRepository implements AccountRepository on MongoDB
type accountRepository struct {
	db *mongo.Database
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *mongo.Database) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) collection() *mongo.Collection {
	return r.db.Collection(models.Account{}.CollectionName())
}

// Create inserts a new account
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	res, err := r.collection().InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEntry
		}
		return err
	}
	account.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID gets an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	var account models.Account
	err = r.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByEmail gets an account by email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.collection().FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// List lists accounts with pagination
func (r *accountRepository) List(ctx context.Context, offset, limit int) ([]*models.Account, int64, error) {
	total, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var accounts []*models.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// ExistsByEmail checks if an account with the email exists
func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"email": email})
	return count > 0, err
}

// ApplyLoginOutcome writes the attempt counter and lock state decided for a
// login attempt. The filter pins failed_attempts to the value the attempt
// was evaluated against, so two concurrent attempts can never both apply.
func (r *accountRepository) ApplyLoginOutcome(ctx context.Context, id string, expectedAttempts, attempts int, lockedUntil, lastLogin *time.Time) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrAccountNotFound
	}

	set := bson.M{
		"failed_attempts": attempts,
		"locked_until":    lockedUntil,
		"updated_at":      time.Now(),
	}
	if lastLogin != nil {
		set["last_login"] = lastLogin
	}

	res, err := r.collection().UpdateOne(
		ctx,
		bson.M{"_id": objID, "failed_attempts": expectedAttempts},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// UpdatePassword replaces the stored password hash
func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.setFields(ctx, id, bson.M{"password_hash": passwordHash})
}

// SetActive activates or deactivates an account
func (r *accountRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.setFields(ctx, id, bson.M{"is_active": active})
}

// SetRole changes the account role
func (r *accountRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	return r.setFields(ctx, id, bson.M{"role": role})
}

// ResetLock clears the failed attempt counter and any lock
func (r *accountRepository) ResetLock(ctx context.Context, id string) error {
	return r.setFields(ctx, id, bson.M{"failed_attempts": 0, "locked_until": nil})
}

// ReleaseExpiredLocks clears locks that expired before olderThan and resets
// their counters. Returns the number of accounts touched.
func (r *accountRepository) ReleaseExpiredLocks(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.collection().UpdateMany(
		ctx,
		bson.M{"locked_until": bson.M{"$lt": olderThan}},
		bson.M{"$set": bson.M{
			"failed_attempts": 0,
			"locked_until":    nil,
			"updated_at":      time.Now(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the indexes the accounts collection relies on
func (r *accountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "locked_until", Value: 1}},
		},
	})
	return err
}

func (r *accountRepository) setFields(ctx context.Context, id string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	fields["updated_at"] = time.Now()

	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
