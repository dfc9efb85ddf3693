package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/workflow"
)

const msgAlreadyProcessed = "This transaction has already been processed"

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

func (s *transactionStore) userDoc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid)
}

func (s *transactionStore) intentCollection(uid string) *firestore.CollectionRef {
	return s.userDoc(uid).Collection("transaction_intents")
}

func (s *transactionStore) CreateIntent(ctx context.Context, intent *models.Intent) error {
	now := time.Now().UTC()
	intent.CreatedAt = now
	intent.UpdatedAt = now

	_, err := s.intentCollection(intent.UID).Doc(intent.ID).Create(ctx, intent)
	if status.Code(err) == codes.AlreadyExists {
		return errs.NewAlreadyExistsError("transaction already submitted")
	}
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save transaction intent", err)
	}
	return nil
}

func (s *transactionStore) GetIntent(ctx context.Context, uid, id string) (*models.Intent, error) {
	doc, err := s.intentCollection(uid).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("Transaction not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get transaction intent", err)
	}
	var intent models.Intent
	if err := doc.DataTo(&intent); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse transaction intent", err)
	}
	return &intent, nil
}

func (s *transactionStore) SetIntentState(ctx context.Context, uid, id, state string) error {
	_, err := s.intentCollection(uid).Doc(id).Update(ctx, []firestore.Update{
		{Path: "state", Value: state},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return errs.NewNotFoundError("Transaction not found")
	}
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update transaction intent", err)
	}
	return nil
}

func (s *transactionStore) DeleteIntent(ctx context.Context, uid, id string) error {
	if _, err := s.intentCollection(uid).Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete transaction intent", err)
	}
	return nil
}

// Ledger returns the commit path for one pending intent.
func (s *transactionStore) Ledger(uid, intentID string) workflow.Ledger {
	return &ledger{store: s, uid: uid, intentID: intentID}
}

type ledger struct {
	store    *transactionStore
	uid      string
	intentID string
}

// Apply reads the intent and the balance, plans the commit and writes the
// balance, the history entry and the intent's final state in one
// transaction. An intent that is no longer pending is rejected, so a
// retried confirmation never posts twice.
func (l *ledger) Apply(ctx context.Context, plan func(balance decimal.Decimal) (workflow.Commit, error)) (workflow.Commit, error) {
	userRef := l.store.userDoc(l.uid)
	intentRef := l.store.intentCollection(l.uid).Doc(l.intentID)

	var commit workflow.Commit
	err := l.store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		intentSnap, err := tx.Get(intentRef)
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("Transaction not found")
		}
		if err != nil {
			return err
		}
		var intent models.Intent
		if err := intentSnap.DataTo(&intent); err != nil {
			return errs.NewDatabaseError("read", "failed to parse transaction intent", err)
		}
		if intent.State != string(workflow.StatePinPending) {
			return errs.NewValidationError(msgAlreadyProcessed)
		}

		userSnap, err := tx.Get(userRef)
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("user not found")
		}
		if err != nil {
			return err
		}
		u, err := decodeUser(userSnap)
		if err != nil {
			return err
		}

		c, err := plan(decimal.NewFromFloat(u.Balance))
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := []firestore.Update{
			{Path: "transactions", Value: append(u.Transactions, c.Transaction)},
			{Path: "updatedAt", Value: now},
		}
		if c.AffectsBalance {
			updates = append(updates, firestore.Update{Path: "balance", Value: c.NewBalance.InexactFloat64()})
		}
		if err := tx.Update(userRef, updates); err != nil {
			return err
		}
		if err := tx.Update(intentRef, []firestore.Update{
			{Path: "state", Value: string(workflow.StateApproved)},
			{Path: "transactionId", Value: c.Transaction.ID},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}
		commit = c
		return nil
	})
	if err != nil {
		return workflow.Commit{}, wrapTxnError("failed to commit transaction", err)
	}
	return commit, nil
}
