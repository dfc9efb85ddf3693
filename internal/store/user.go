package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

type userStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{
		Client:     client,
		Collection: client.Collection("users"),
	}
}

func (us *userStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Normalize()

	_, err := us.Collection.Doc(user.UID).Create(ctx, user)
	if status.Code(err) == codes.AlreadyExists {
		return errs.NewAlreadyExistsError("user already exists")
	}
	if err != nil {
		return errs.NewDatabaseError("create", "failed to create user", err)
	}
	return nil
}

func (us *userStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	doc, err := us.Collection.Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get user", err)
	}
	return decodeUser(doc)
}

func (us *userStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	iter := us.Collection.Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errs.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to query users by email", err)
	}
	return decodeUser(doc)
}

// ListUsers returns every user document. The admin console sorts and pages
// in memory.
func (us *userStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	iter := us.Collection.Documents(ctx)
	defer iter.Stop()

	var out []*models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list users", err)
		}
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// UpdateFields patches top-level fields of a user document.
func (us *userStore) UpdateFields(ctx context.Context, uid string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields)+1)
	for path, v := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now().UTC()})

	_, err := us.Collection.Doc(uid).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return errs.NewNotFoundError("user not found")
	}
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update user", err)
	}
	return nil
}

func (us *userStore) DeleteUser(ctx context.Context, uid string) error {
	if _, err := us.Collection.Doc(uid).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete user", err)
	}
	return nil
}

// MutateUser reads the user inside a transaction, applies fn and writes the
// balance, cards and transactions back. fn may run more than once.
func (us *userStore) MutateUser(ctx context.Context, uid string, fn func(u *models.User) error) (*models.User, error) {
	ref := us.Collection.Doc(uid)
	var out *models.User

	err := us.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("user not found")
		}
		if err != nil {
			return err
		}
		u, err := decodeUser(doc)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		u.UpdatedAt = time.Now().UTC()
		out = u
		return tx.Update(ref, []firestore.Update{
			{Path: "balance", Value: u.Balance},
			{Path: "cards", Value: u.Cards},
			{Path: "transactions", Value: u.Transactions},
			{Path: "updatedAt", Value: u.UpdatedAt},
		})
	})
	if err != nil {
		return nil, wrapTxnError("failed to update user", err)
	}
	return out, nil
}

// WatchUser streams the user document until ctx is cancelled. emit receives
// nil for a missing document and is called with an error once if the
// listener fails.
func (us *userStore) WatchUser(ctx context.Context, uid string, emit func(*models.User, error)) {
	iter := us.Collection.Doc(uid).Snapshots(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return
			}
			emit(nil, errs.NewDatabaseError("watch", "user listener failed", err))
			return
		}
		if !snap.Exists() {
			emit(nil, nil)
			continue
		}
		u, err := decodeUser(snap)
		emit(u, err)
	}
}

// ForEachRaw visits every user document as raw data.
func (us *userStore) ForEachRaw(ctx context.Context, fn func(uid string, data map[string]any) error) error {
	iter := us.Collection.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return errs.NewDatabaseError("read", "failed to iterate users", err)
		}
		if err := fn(doc.Ref.ID, doc.Data()); err != nil {
			return err
		}
	}
}

// MergeFields writes fields with merge semantics, creating none that are
// not listed.
func (us *userStore) MergeFields(ctx context.Context, uid string, fields map[string]any) error {
	if _, err := us.Collection.Doc(uid).Set(ctx, fields, firestore.MergeAll); err != nil {
		return errs.NewDatabaseError("update", "failed to merge user fields", err)
	}
	return nil
}

func decodeUser(doc *firestore.DocumentSnapshot) (*models.User, error) {
	var u models.User
	if err := doc.DataTo(&u); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse user data", err)
	}
	if u.UID == "" {
		u.UID = doc.Ref.ID
	}
	u.Normalize()
	return &u, nil
}

// wrapTxnError keeps domain errors returned from inside a transaction and
// wraps everything else as a database failure.
func wrapTxnError(msg string, err error) error {
	var (
		nf *errs.NotFoundError
		ve *errs.ValidationError
		ae *errs.AlreadyExistsError
		de *errs.DatabaseError
	)
	switch {
	case errors.As(err, &nf), errors.As(err, &ve), errors.As(err, &ae), errors.As(err, &de):
		return err
	default:
		return errs.NewDatabaseError("transaction", msg, err)
	}
}
