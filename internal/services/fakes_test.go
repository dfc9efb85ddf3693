package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/workflow"
)

// --- Fakes ---

type fakeUserStore struct {
	users map[string]*models.User

	getErr    error
	createErr error
	updateErr error
	deleteErr error
	mutateErr error
	mergeErr  error

	createCalls int
	updateCalls int
	deleteCalls int
	mutateCalls int
	lastFields  map[string]any

	snapshots []*models.User
	watchErr  error

	raw    map[string]map[string]any
	merged map[string]map[string]any
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[string]*models.User{}, merged: map[string]map[string]any{}}
	for _, u := range users {
		u.Normalize()
		f.users[u.UID] = u
	}
	return f
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Transactions = append([]models.Transaction{}, u.Transactions...)
	c.Cards = append([]models.Card{}, u.Cards...)
	return &c
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *models.User) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[u.UID]; ok {
		return errs.NewAlreadyExistsError("user already exists")
	}
	f.users[u.UID] = copyUser(u)
	return nil
}

func (f *fakeUserStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[uid]
	if !ok {
		return nil, errs.NewNotFoundError("user not found")
	}
	return copyUser(u), nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, errs.NewNotFoundError("user not found")
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (f *fakeUserStore) UpdateFields(_ context.Context, uid string, fields map[string]any) error {
	f.updateCalls++
	f.lastFields = fields
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[uid]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	for k, v := range fields {
		switch k {
		case "firstName":
			u.FirstName = v.(string)
		case "email":
			u.Email = v.(string)
		case "role":
			u.Role = v.(string)
		case "balance":
			u.Balance = v.(float64)
		case "accountStatus":
			u.AccountStatus = v.(string)
		}
	}
	return nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, uid string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.users, uid)
	return nil
}

func (f *fakeUserStore) MutateUser(_ context.Context, uid string, fn func(u *models.User) error) (*models.User, error) {
	f.mutateCalls++
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	u, ok := f.users[uid]
	if !ok {
		return nil, errs.NewNotFoundError("user not found")
	}
	c := copyUser(u)
	if err := fn(c); err != nil {
		return nil, err
	}
	f.users[uid] = c
	return copyUser(c), nil
}

func (f *fakeUserStore) WatchUser(ctx context.Context, _ string, emit func(*models.User, error)) {
	for _, u := range f.snapshots {
		if ctx.Err() != nil {
			return
		}
		if u == nil {
			emit(nil, nil)
			continue
		}
		emit(copyUser(u), nil)
	}
	if f.watchErr != nil && ctx.Err() == nil {
		emit(nil, f.watchErr)
	}
}

func (f *fakeUserStore) ForEachRaw(_ context.Context, fn func(uid string, data map[string]any) error) error {
	for uid, data := range f.raw {
		if err := fn(uid, data); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeUserStore) MergeFields(_ context.Context, uid string, fields map[string]any) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.merged[uid] = fields
	for k, v := range fields {
		f.raw[uid][k] = v
	}
	return nil
}

type fakeIdentity struct {
	nextUID   string
	createErr error
	updateErr error
	deleteErr error
	lastLogin *time.Time
	loginErr  error

	created []string
	deleted []string
	emails  map[string]string
}

func (f *fakeIdentity) CreateCredential(_ context.Context, email, _, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, email)
	uid := f.nextUID
	if uid == "" {
		uid = fmt.Sprintf("uid-%d", len(f.created))
	}
	return uid, nil
}

func (f *fakeIdentity) UpdateEmail(_ context.Context, uid, email string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.emails == nil {
		f.emails = map[string]string{}
	}
	f.emails[uid] = email
	return nil
}

func (f *fakeIdentity) DeleteCredential(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return f.deleteErr
}

func (f *fakeIdentity) LastLogin(_ context.Context, _ string) (*time.Time, error) {
	return f.lastLogin, f.loginErr
}

type fakeUploader struct {
	err      error
	uploads  int
	deleted  []string
	lastFile dto.Upload
}

func (f *fakeUploader) UploadProfileImage(_ context.Context, key string, file dto.Upload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads++
	f.lastFile = file
	return "https://storage.googleapis.com/bucket/profile-images/" + key + ".png", nil
}

func (f *fakeUploader) DeleteObject(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeCipher struct {
	err   error
	calls int
}

func (f *fakeCipher) Encrypt(_ context.Context, plaintext string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "enc:" + plaintext, nil
}

type fakeMetrics struct {
	outcomes []string
	failed   []string
}

func (f *fakeMetrics) WorkflowOutcome(action, outcome string) {
	f.outcomes = append(f.outcomes, action+":"+outcome)
}

func (f *fakeMetrics) FailedAttempt(scope string) {
	f.failed = append(f.failed, scope)
}

type fixedCode string

func (c fixedCode) Verify(code string) bool { return string(c) == code }

type fakeIssuer struct {
	err    error
	issued []string
}

func (f *fakeIssuer) Issue(uid string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.issued = append(f.issued, uid)
	return "token-" + uid, time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC), nil
}

// fakeIntentStore keeps intents in memory and commits against a
// fakeUserStore the way the Firestore ledger does.
type fakeIntentStore struct {
	users     *fakeUserStore
	intents   map[string]*models.Intent
	createErr error
	commitErr error
	applies   int
}

func newFakeIntentStore(users *fakeUserStore) *fakeIntentStore {
	return &fakeIntentStore{users: users, intents: map[string]*models.Intent{}}
}

func (f *fakeIntentStore) CreateIntent(_ context.Context, intent *models.Intent) error {
	if f.createErr != nil {
		return f.createErr
	}
	c := *intent
	f.intents[intent.ID] = &c
	return nil
}

func (f *fakeIntentStore) GetIntent(_ context.Context, _, id string) (*models.Intent, error) {
	in, ok := f.intents[id]
	if !ok {
		return nil, errs.NewNotFoundError("Transaction not found")
	}
	c := *in
	return &c, nil
}

func (f *fakeIntentStore) SetIntentState(_ context.Context, _, id, state string) error {
	in, ok := f.intents[id]
	if !ok {
		return errs.NewNotFoundError("Transaction not found")
	}
	in.State = state
	return nil
}

func (f *fakeIntentStore) DeleteIntent(_ context.Context, _, id string) error {
	delete(f.intents, id)
	return nil
}

func (f *fakeIntentStore) Ledger(uid, intentID string) workflow.Ledger {
	return &fakeLedger{store: f, uid: uid, intentID: intentID}
}

type fakeLedger struct {
	store    *fakeIntentStore
	uid      string
	intentID string
}

func (l *fakeLedger) Apply(_ context.Context, plan func(decimal.Decimal) (workflow.Commit, error)) (workflow.Commit, error) {
	l.store.applies++
	if l.store.commitErr != nil {
		return workflow.Commit{}, l.store.commitErr
	}
	in := l.store.intents[l.intentID]
	if in.State != string(workflow.StatePinPending) {
		return workflow.Commit{}, errs.NewValidationError(msgAlreadyProcessed)
	}
	u := l.store.users.users[l.uid]
	c, err := plan(decimal.NewFromFloat(u.Balance))
	if err != nil {
		return workflow.Commit{}, err
	}
	if c.AffectsBalance {
		u.Balance = c.NewBalance.InexactFloat64()
	}
	u.Transactions = append(u.Transactions, c.Transaction)
	in.State = string(workflow.StateApproved)
	in.TransactionID = c.Transaction.ID
	return c, nil
}
