// Package auth implements the Auth Service (§4.7): signup, verification,
// session-check, refresh, and logout, built entirely on Store plus the
// injectable Clock/IDSource and MailSender collaborators so every path is
// deterministically testable. Grounded on the teacher's goctl logic layer
// (NewXLogic constructors embedding logx.Logger) in
// services/gateway/services/auth/rpc/internal/logic, generalized away from
// its password/JWT flow to the spec's opaque-token, email-verification-only
// flow.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/clock"
	"github.com/assadsharif/chatkit-core/internal/collab"
	"github.com/assadsharif/chatkit-core/internal/store"
)

var emailValidator = validator.New()

func validEmail(email string) bool {
	return emailValidator.Var(email, "required,email") == nil
}

// Service is the Auth Service. All five operations are pure translations of
// Store results plus a MailSender side effect on signup.
type Service struct {
	store store.Store
	clock clock.Clock
	ids   clock.IDSource
	mail  collab.MailSender

	sessionTTL      time.Duration
	refreshGrace    time.Duration
	verificationTTL time.Duration
}

// New constructs the Auth Service from its collaborators and the TTLs §4.2
// exposes through Config.
func New(s store.Store, c clock.Clock, ids clock.IDSource, mail collab.MailSender, sessionTTL, refreshGrace, verificationTTL time.Duration) *Service {
	return &Service{
		store:           s,
		clock:           c,
		ids:             ids,
		mail:            mail,
		sessionTTL:      sessionTTL,
		refreshGrace:    refreshGrace,
		verificationTTL: verificationTTL,
	}
}

// Signup validates the email, requires explicit consent, mints a
// verification token, and sends it via the mail sender. It never reveals
// whether the email was already registered (§4.7): both a brand-new and an
// already-existing-but-unverified email return the same response.
func (s *Service) Signup(ctx context.Context, email string, consent bool) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	if !consent {
		return ErrConsentRequired
	}

	now := s.clock.Now()
	_, err := s.store.CreateUser(ctx, email, consent)
	switch {
	case err == nil, err == store.ErrAlreadyExists:
		// Either a fresh account or one that already exists: both paths
		// issue a token against the same email without revealing which
		// case occurred (§4.7 "does not leak whether an email was
		// previously registered").
	case err == store.ErrConsentRequired:
		return ErrConsentRequired
	default:
		logx.WithContext(ctx).Errorw("signup store error", logx.Field("error", err.Error()))
		return ErrUnavailable
	}

	token, err := s.ids.NewToken(256)
	if err != nil {
		return fmt.Errorf("auth: signup: generate token: %w", err)
	}
	expiresAt := now.Add(s.verificationTTL)
	if err := s.store.PutVerificationToken(ctx, email, token, expiresAt); err != nil {
		logx.WithContext(ctx).Errorw("put verification token failed", logx.Field("error", err.Error()))
		return ErrUnavailable
	}

	if _, err := s.mail.Send(ctx, email, "Verify your account",
		fmt.Sprintf("Your verification token is %s", token)); err != nil {
		logx.WithContext(ctx).Errorw("verification email send failed", logx.Field("error", err.Error()))
	}

	return nil
}

// Verify atomically consumes token, marks the owning user verified, and
// issues a session (§4.7). Exactly one of any concurrent calls on the same
// token succeeds, since ConsumeVerificationToken's UPDATE is itself atomic.
func (s *Service) Verify(ctx context.Context, token string) (store.Session, store.User, error) {
	now := s.clock.Now()

	email, err := s.store.ConsumeVerificationToken(ctx, token, now)
	switch err {
	case nil:
		// fall through
	case store.ErrExpired:
		return store.Session{}, store.User{}, ErrTokenExpired
	case store.ErrNotFound, store.ErrAlreadyExists:
		return store.Session{}, store.User{}, ErrVerificationFailed
	default:
		logx.WithContext(ctx).Errorw("consume verification token failed", logx.Field("error", err.Error()))
		return store.Session{}, store.User{}, ErrUnavailable
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		logx.WithContext(ctx).Errorw("lookup verified user failed", logx.Field("error", err.Error()))
		return store.Session{}, store.User{}, ErrUnavailable
	}

	if !user.Verified {
		if err := s.store.MarkUserVerified(ctx, user.ID); err != nil {
			logx.WithContext(ctx).Errorw("mark user verified failed", logx.Field("error", err.Error()))
			return store.Session{}, store.User{}, ErrUnavailable
		}
		user.Verified = true
	}

	session, err := s.store.CreateSession(ctx, user.ID, s.sessionTTL, now)
	if err != nil {
		logx.WithContext(ctx).Errorw("create session failed", logx.Field("error", err.Error()))
		return store.Session{}, store.User{}, ErrUnavailable
	}

	return session, user, nil
}

// SessionCheck is a probe: it never returns an auth error, only a validity
// flag (§4.7 "never 401 here").
func (s *Service) SessionCheck(ctx context.Context, bearer string) (bool, store.User) {
	now := s.clock.Now()
	_, user, err := s.store.LookupSession(ctx, bearer, now)
	if err != nil {
		return false, store.User{}
	}
	return true, user
}

// Refresh rotates bearer into a new token while the old one keeps
// authenticating until now+grace (§3, §4.7).
func (s *Service) Refresh(ctx context.Context, bearer string) (string, error) {
	now := s.clock.Now()
	newToken, err := s.store.ExtendOrRotateSession(ctx, bearer, s.sessionTTL, s.refreshGrace, now)
	switch err {
	case nil:
		return newToken, nil
	case store.ErrNotFound, store.ErrExpired:
		return "", ErrSessionExpired
	default:
		logx.WithContext(ctx).Errorw("refresh session failed", logx.Field("error", err.Error()))
		return "", ErrUnavailable
	}
}

// Logout idempotently deletes the presented session only (§9 open
// question: the refresh-grace partner token is left untouched, per the
// specification's stated default).
func (s *Service) Logout(ctx context.Context, bearer string) error {
	if err := s.store.DeleteSession(ctx, bearer); err != nil {
		logx.WithContext(ctx).Errorw("logout failed", logx.Field("error", err.Error()))
		return ErrUnavailable
	}
	return nil
}
