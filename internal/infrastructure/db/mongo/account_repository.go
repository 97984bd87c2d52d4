package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

// AccountRepository implements ports.AccountRepository on MongoDB.
type AccountRepository struct {
	client   *mongo.Client
	accounts *mongo.Collection
	links    *mongo.Collection
	invites  *mongo.Collection
}

func NewAccountRepository(client *mongo.Client, db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		client:   client,
		accounts: db.Collection(collectionAccounts),
		links:    db.Collection(collectionLinks),
		invites:  db.Collection(collectionInvites),
	}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

type mongoAccount struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty"`
	TelegramID         int64               `bson:"telegram_id"`
	FullName           string              `bson:"full_name"`
	Role               string              `bson:"role"`
	OwnerID            *primitive.ObjectID `bson:"owner_id,omitempty"`
	Tier               int                 `bson:"subscription_tier"`
	CreatedAt          time.Time           `bson:"created_at"`
	SubscriptionEndsAt *time.Time          `bson:"subscription_end_date,omitempty"`
	// TeamVersion is bumped by every redemption that reads or changes the
	// account's team, so concurrent redemptions touching it conflict.
	TeamVersion        int64               `bson:"team_version,omitempty"`
}

func (m *mongoAccount) toDomain() *domain.Account {
	a := &domain.Account{
		ID:                 m.ID.Hex(),
		TelegramID:         m.TelegramID,
		FullName:           m.FullName,
		Role:               domain.Role(m.Role),
		Tier:               domain.Tier(m.Tier),
		CreatedAt:          m.CreatedAt.UTC(),
		SubscriptionEndsAt: m.SubscriptionEndsAt,
	}
	if a.Role != domain.RoleDelegate {
		a.Role = domain.RoleOwner
	}
	if m.OwnerID != nil {
		a.OwnerID = m.OwnerID.Hex()
	}
	return a
}

func accountFromDomain(a *domain.Account) (mongoAccount, error) {
	doc := mongoAccount{
		TelegramID:         a.TelegramID,
		FullName:           a.FullName,
		Role:               string(a.Role),
		Tier:               int(a.Tier),
		CreatedAt:          a.CreatedAt.UTC(),
		SubscriptionEndsAt: a.SubscriptionEndsAt,
	}
	if a.OwnerID != "" {
		oid, err := primitive.ObjectIDFromHex(a.OwnerID)
		if err != nil {
			return mongoAccount{}, fmt.Errorf("owner id: %w", err)
		}
		doc.OwnerID = &oid
	}
	return doc, nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.accounts.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"telegram_id": telegramID})
}

// FindByID looks an account up by its hex id. A malformed id is not found.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := accountFromDomain(account)
	if err != nil {
		return nil, err
	}

	res, err := r.accounts.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) List(ctx context.Context, limit int) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.accounts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	out := make([]*domain.Account, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *AccountRepository) UpdateSubscription(ctx context.Context, id string, upd ports.SubscriptionUpdate) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	update := subscriptionUpdate(upd)
	if len(update) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	err = r.accounts.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return doc.toDomain(), nil
}

func subscriptionUpdate(upd ports.SubscriptionUpdate) bson.M {
	set := bson.M{}
	update := bson.M{}
	if upd.Tier != nil {
		set["subscription_tier"] = int(*upd.Tier)
	}
	switch {
	case upd.ClearEndsAt:
		update["$unset"] = bson.M{"subscription_end_date": ""}
	case upd.EndsAt != nil:
		set["subscription_end_date"] = upd.EndsAt.UTC()
	}
	if len(set) > 0 {
		update["$set"] = set
	}
	return update
}

// Delete removes the account with every delegation that touches it.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	_, err = withTransaction(ctx, r.client, func(sc mongo.SessionContext) (any, error) {
		// Delegates of this account become owners again.
		if _, err := r.accounts.UpdateMany(sc,
			bson.M{"owner_id": oid},
			bson.M{"$set": bson.M{"role": string(domain.RoleOwner)}, "$unset": bson.M{"owner_id": ""}},
		); err != nil {
			return nil, fmt.Errorf("release delegates: %w", err)
		}
		if _, err := r.links.DeleteMany(sc, bson.M{"$or": bson.A{
			bson.M{"owner_id": oid},
			bson.M{"delegate_id": oid},
		}}); err != nil {
			return nil, fmt.Errorf("delete links: %w", err)
		}
		if _, err := r.invites.DeleteMany(sc, bson.M{"owner_id": oid}); err != nil {
			return nil, fmt.Errorf("delete invites: %w", err)
		}
		res, err := r.accounts.DeleteOne(sc, bson.M{"_id": oid})
		if err != nil {
			return nil, fmt.Errorf("delete account: %w", err)
		}
		if res.DeletedCount == 0 {
			return nil, domain.ErrAccountNotFound
		}
		return nil, nil
	})
	return err
}
