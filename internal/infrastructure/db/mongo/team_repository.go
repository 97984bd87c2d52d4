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

// TeamRepository implements ports.TeamRepository on MongoDB. Invite codes
// are stored with the code as _id.
type TeamRepository struct {
	client   *mongo.Client
	accounts *mongo.Collection
	links    *mongo.Collection
	invites  *mongo.Collection
}

func NewTeamRepository(client *mongo.Client, db *mongo.Database) *TeamRepository {
	return &TeamRepository{
		client:   client,
		accounts: db.Collection(collectionAccounts),
		links:    db.Collection(collectionLinks),
		invites:  db.Collection(collectionInvites),
	}
}

var _ ports.TeamRepository = (*TeamRepository)(nil)

type mongoLink struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     primitive.ObjectID `bson:"owner_id"`
	DelegateID  primitive.ObjectID `bson:"delegate_id"`
	Permissions map[string]string  `bson:"permissions"`
	InviteCode  string             `bson:"invite_code,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (m *mongoLink) toDomain() *domain.DelegationLink {
	return &domain.DelegationLink{
		ID:          m.ID.Hex(),
		OwnerID:     m.OwnerID.Hex(),
		DelegateID:  m.DelegateID.Hex(),
		Permissions: permissionsFromRaw(m.Permissions),
		InviteCode:  m.InviteCode,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type mongoInvite struct {
	Code        string             `bson:"_id"`
	OwnerID     primitive.ObjectID `bson:"owner_id"`
	Permissions map[string]string  `bson:"permissions"`
	CreatedAt   time.Time          `bson:"created_at"`
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty"`
}

func (m *mongoInvite) toDomain() *domain.InviteCode {
	return &domain.InviteCode{
		Code:        m.Code,
		OwnerID:     m.OwnerID.Hex(),
		Permissions: permissionsFromRaw(m.Permissions),
		CreatedAt:   m.CreatedAt.UTC(),
		ExpiresAt:   m.ExpiresAt,
	}
}

// permissionsFromRaw keeps stored values as they are. Normalisation happens
// in the access resolver.
func permissionsFromRaw(raw map[string]string) domain.PermissionMap {
	out := make(domain.PermissionMap, len(raw))
	for k, v := range raw {
		out[domain.Feature(k)] = domain.Level(v)
	}
	return out
}

func (r *TeamRepository) FindLink(ctx context.Context, delegateID string) (*domain.DelegationLink, error) {
	oid, err := primitive.ObjectIDFromHex(delegateID)
	if err != nil {
		return nil, domain.ErrNotBound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoLink
	if err := r.links.FindOne(ctx, bson.M{"delegate_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotBound
		}
		return nil, fmt.Errorf("find link: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TeamRepository) ListLinks(ctx context.Context, ownerID string) ([]*domain.DelegationLink, error) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.links.Find(ctx, bson.M{"owner_id": oid}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoLink
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}
	out := make([]*domain.DelegationLink, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *TeamRepository) UpdateLinkPermissions(ctx context.Context, delegateID string, perms domain.PermissionMap) error {
	oid, err := primitive.ObjectIDFromHex(delegateID)
	if err != nil {
		return domain.ErrNotBound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.links.UpdateOne(ctx, bson.M{"delegate_id": oid}, bson.M{"$set": bson.M{"permissions": perms.Raw()}})
	if err != nil {
		return fmt.Errorf("update link permissions: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotBound
	}
	return nil
}

func (r *TeamRepository) CreateInvite(ctx context.Context, invite *domain.InviteCode) error {
	owner, err := primitive.ObjectIDFromHex(invite.OwnerID)
	if err != nil {
		return fmt.Errorf("invite owner id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoInvite{
		Code:        invite.Code,
		OwnerID:     owner,
		Permissions: invite.Permissions.Raw(),
		CreatedAt:   invite.CreatedAt.UTC(),
		ExpiresAt:   invite.ExpiresAt,
	}
	if _, err := r.invites.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ports.ErrDuplicateCode
		}
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (r *TeamRepository) FindInvite(ctx context.Context, code string) (*domain.InviteCode, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoInvite
	if err := r.invites.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TeamRepository) ListInvites(ctx context.Context, ownerID string) ([]*domain.InviteCode, error) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.invites.Find(ctx, bson.M{"owner_id": oid}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoInvite
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode invites: %w", err)
	}
	out := make([]*domain.InviteCode, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// Redeem deletes the invite, flips the candidate and inserts the link in one
// transaction. Concurrent redemptions of the same code conflict on the
// delete; the retried loser finds the code gone.
//
// Both the inviting owner and the candidate account are written, so a
// redemption that makes the candidate an owner of delegates (or the owner a
// delegate) conflicts with this one. The retry then sees the committed team
// and fails with ErrHasDelegates or ErrCodeNotFound.
func (r *TeamRepository) Redeem(ctx context.Context, code, delegateID string, now time.Time) (*domain.DelegationLink, error) {
	delegate, err := primitive.ObjectIDFromHex(delegateID)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	res, err := withTransaction(ctx, r.client, func(sc mongo.SessionContext) (any, error) {
		var invite mongoInvite
		if err := r.invites.FindOneAndDelete(sc, bson.M{"_id": code}).Decode(&invite); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrCodeAlreadyRedeemed
			}
			return nil, fmt.Errorf("consume invite: %w", err)
		}
		if invite.ExpiresAt != nil && !now.Before(*invite.ExpiresAt) {
			return nil, domain.ErrCodeNotFound
		}
		if invite.OwnerID == delegate {
			return nil, domain.ErrSelfInvite
		}

		owner, err := r.accounts.UpdateOne(sc,
			bson.M{"_id": invite.OwnerID, "role": bson.M{"$ne": string(domain.RoleDelegate)}},
			bson.M{"$inc": bson.M{"team_version": 1}},
		)
		if err != nil {
			return nil, fmt.Errorf("lock owner: %w", err)
		}
		if owner.MatchedCount == 0 {
			return nil, domain.ErrCodeNotFound
		}

		upd, err := r.accounts.UpdateOne(sc,
			bson.M{"_id": delegate, "role": bson.M{"$ne": string(domain.RoleDelegate)}},
			bson.M{
				"$set": bson.M{"role": string(domain.RoleDelegate), "owner_id": invite.OwnerID},
				"$inc": bson.M{"team_version": 1},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("bind delegate: %w", err)
		}
		if upd.MatchedCount == 0 {
			return nil, domain.ErrAlreadyBound
		}

		delegates, err := r.links.CountDocuments(sc, bson.M{"owner_id": delegate})
		if err != nil {
			return nil, fmt.Errorf("count delegates: %w", err)
		}
		if delegates > 0 {
			return nil, domain.ErrHasDelegates
		}

		link := mongoLink{
			OwnerID:     invite.OwnerID,
			DelegateID:  delegate,
			Permissions: invite.Permissions,
			InviteCode:  invite.Code,
			CreatedAt:   now.UTC(),
		}
		ins, err := r.links.InsertOne(sc, link)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrAlreadyBound
			}
			return nil, fmt.Errorf("insert link: %w", err)
		}
		if oid, ok := ins.InsertedID.(primitive.ObjectID); ok {
			link.ID = oid
		}

		// Codes issued by the new delegate can no longer be redeemed.
		if _, err := r.invites.DeleteMany(sc, bson.M{"owner_id": delegate}); err != nil {
			return nil, fmt.Errorf("drop delegate invites: %w", err)
		}
		return link.toDomain(), nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.DelegationLink), nil
}

// Unbind removes the delegate's link and resets it to an owner. An account
// left as a delegate without a link is also reset.
func (r *TeamRepository) Unbind(ctx context.Context, delegateID string) error {
	delegate, err := primitive.ObjectIDFromHex(delegateID)
	if err != nil {
		return domain.ErrNotBound
	}

	_, err = withTransaction(ctx, r.client, func(sc mongo.SessionContext) (any, error) {
		del, err := r.links.DeleteOne(sc, bson.M{"delegate_id": delegate})
		if err != nil {
			return nil, fmt.Errorf("delete link: %w", err)
		}
		upd, err := r.accounts.UpdateOne(sc,
			bson.M{"_id": delegate, "role": string(domain.RoleDelegate)},
			bson.M{"$set": bson.M{"role": string(domain.RoleOwner)}, "$unset": bson.M{"owner_id": ""}},
		)
		if err != nil {
			return nil, fmt.Errorf("reset delegate: %w", err)
		}
		if del.DeletedCount == 0 && upd.ModifiedCount == 0 {
			return nil, domain.ErrNotBound
		}
		return nil, nil
	})
	return err
}
