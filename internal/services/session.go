package services

import (
	"context"
	"time"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

type userSSStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	WatchUser(ctx context.Context, uid string, emit func(*models.User, error))
}

type lastLoginReader interface {
	LastLogin(ctx context.Context, uid string) (*time.Time, error)
}

type sessionService struct {
	users    userSSStore
	identity lastLoginReader
}

func NewSessionService(users userSSStore, identity lastLoginReader) *sessionService {
	return &sessionService{users: users, identity: identity}
}

// Current reads the signed-in user's document once. A principal without a
// document gets a minimal empty account.
func (s *sessionService) Current(ctx context.Context, p dto.Principal) (*models.User, error) {
	u, err := s.users.GetUser(ctx, p.UID)
	if errs.IsNotFound(err) {
		u = placeholderUser(p)
	} else if err != nil {
		return nil, err
	}
	u.LastLogin = s.lastLogin(ctx, p)
	return u, nil
}

// Stream emits the session state for every change to the user document
// until ctx is done or emit fails. The first state is always loading.
func (s *sessionService) Stream(ctx context.Context, p dto.Principal, emit func(dto.SessionState) error) error {
	if err := emit(dto.SessionState{Loading: true}); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lastLogin := s.lastLogin(ctx, p)
	var emitErr error

	s.users.WatchUser(ctx, p.UID, func(u *models.User, err error) {
		if emitErr != nil {
			return
		}
		state := dto.SessionState{}
		switch {
		case err != nil:
			logger.FromContext(ctx).Error("session listener failed", "error", err)
			state.Error = "Failed to load user data"
		case u == nil:
			state.User = placeholderUser(p)
		default:
			state.User = u
		}
		if state.User != nil {
			state.User.LastLogin = lastLogin
			state.IsAdmin = state.User.IsAdmin()
		}
		if emitErr = emit(state); emitErr != nil {
			cancel()
		}
	})

	if emitErr != nil {
		return emitErr
	}
	return nil
}

func (s *sessionService) lastLogin(ctx context.Context, p dto.Principal) *time.Time {
	if p.LastLogin != nil {
		return p.LastLogin
	}
	t, err := s.identity.LastLogin(ctx, p.UID)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to read last login", "error", err)
		return nil
	}
	return t
}

func placeholderUser(p dto.Principal) *models.User {
	u := &models.User{UID: p.UID, Email: p.Email}
	u.Normalize()
	return u
}
