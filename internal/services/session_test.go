package services

import (
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/pkg/helpers"
)

func TestSessionServiceCurrent(t *testing.T) {
	login := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	users := newFakeUserStore(&models.User{UID: "u1", Email: "jane@example.com", Balance: 42, Role: models.RoleAdmin})
	svc := NewSessionService(users, &fakeIdentity{lastLogin: &login})

	u, err := svc.Current(helpers.TestCtx(), dto.Principal{UID: "u1"})
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if u.Balance != 42 || u.LastLogin == nil || !u.LastLogin.Equal(login) || !u.IsAdmin() {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestSessionServiceCurrentSynthesizesMissingUser(t *testing.T) {
	svc := NewSessionService(newFakeUserStore(), &fakeIdentity{})

	u, err := svc.Current(helpers.TestCtx(), dto.Principal{UID: "new", Email: "new@example.com"})
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if u.UID != "new" || u.Email != "new@example.com" || u.Balance != 0 || u.Cards == nil || u.Transactions == nil {
		t.Fatalf("unexpected placeholder: %+v", u)
	}
}

func TestSessionServiceCurrentPropagatesStoreError(t *testing.T) {
	users := newFakeUserStore()
	users.getErr = errors.New("unavailable")
	svc := NewSessionService(users, &fakeIdentity{})

	if _, err := svc.Current(helpers.TestCtx(), dto.Principal{UID: "u1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSessionServiceStream(t *testing.T) {
	users := newFakeUserStore()
	users.snapshots = []*models.User{
		{UID: "u1", Balance: 10},
		{UID: "u1", Balance: 20},
	}
	users.watchErr = errors.New("listener broke")
	svc := NewSessionService(users, &fakeIdentity{})

	var states []dto.SessionState
	err := svc.Stream(helpers.TestCtx(), dto.Principal{UID: "u1"}, func(s dto.SessionState) error {
		states = append(states, s)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if len(states) != 4 {
		t.Fatalf("expected 4 states, got %d", len(states))
	}
	if !states[0].Loading || states[0].User != nil {
		t.Fatalf("first state must be loading: %+v", states[0])
	}
	if states[1].Loading || states[1].User.Balance != 10 || states[2].User.Balance != 20 {
		t.Fatalf("unexpected snapshots: %+v %+v", states[1], states[2])
	}
	if states[3].Error == "" || states[3].User != nil {
		t.Fatalf("expected error state, got %+v", states[3])
	}
}

func TestSessionServiceStreamStopsWhenEmitFails(t *testing.T) {
	users := newFakeUserStore()
	users.snapshots = []*models.User{{UID: "u1"}, {UID: "u1"}, {UID: "u1"}}
	svc := NewSessionService(users, &fakeIdentity{})

	gone := errors.New("client gone")
	calls := 0
	err := svc.Stream(helpers.TestCtx(), dto.Principal{UID: "u1"}, func(s dto.SessionState) error {
		calls++
		if calls == 2 {
			return gone
		}
		return nil
	})
	if !errors.Is(err, gone) {
		t.Fatalf("expected emit error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected stream to stop after failed emit, got %d calls", calls)
	}
}
