package service

import (
	"context"
	"sort"
	"time"

	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/repository"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

type sessionDomainService struct {
	cfg      config.SessionConfig
	sessions repository.SessionRepository
	audit    AuditService
	log      logger.Logger

	now func() time.Time
}

// NewSessionDomainService creates the session service.
func NewSessionDomainService(
	cfg config.SessionConfig,
	sessions repository.SessionRepository,
	audit AuditService,
	log logger.Logger,
) SessionService {
	return &sessionDomainService{
		cfg:      cfg,
		sessions: sessions,
		audit:    audit,
		log:      log.WithComponent("session_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionDomainService) Create(ctx context.Context, userID string, device models.DeviceContext, attrs models.SessionAttributes) (*models.Session, error) {
	if err := s.enforceLimit(ctx, userID); err != nil {
		return nil, err
	}

	session := models.NewSession(userID, device, s.cfg.AbsoluteTimeout)
	session.MFAVerified = attrs.MFAVerified
	session.IsTrustedDevice = attrs.TrustedDevice
	if err := s.sessions.Save(ctx, session, s.recordTTL()); err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}

	event := models.NewAuditEvent(constants.EventTypeSessionCreated)
	event.UserID = userID
	event.SessionID = session.SessionID
	event.DeviceID = device.DeviceID
	event.IPAddress = device.IPAddress
	s.audit.Emit(ctx, event)

	s.log.Info(ctx, "session created",
		logger.String("session_id", session.SessionID),
		logger.String("user_id", userID),
	)
	return session, nil
}

func (s *sessionDomainService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}
	if session == nil {
		return nil, errors.ErrSessionNotFound(sessionID)
	}
	if session.IsTerminated() {
		return nil, errors.ErrSessionNotFound(sessionID)
	}

	now := s.now()
	if session.AbsoluteExpired(now, s.cfg.AbsoluteTimeout) {
		s.expire(ctx, session, "absolute")
		return nil, errors.ErrSessionExpired(sessionID, "absolute")
	}
	if session.IdleExpired(now, s.cfg.IdleTimeout) {
		s.expire(ctx, session, "idle")
		return nil, errors.ErrSessionExpired(sessionID, "idle")
	}
	return session, nil
}

func (s *sessionDomainService) Touch(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Touch(s.now(), s.cfg.IdleTimeout, s.cfg.AbsoluteTimeout)
	if err := s.sessions.Update(ctx, session, 0); err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}
	return session, nil
}

func (s *sessionDomainService) Terminate(ctx context.Context, sessionID, reason string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	if session == nil || session.IsTerminated() {
		return errors.ErrSessionNotFound(sessionID)
	}
	return s.terminate(ctx, session, reason)
}

func (s *sessionDomainService) TerminateAllForUser(ctx context.Context, userID, reason string) (int, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return 0, errors.ErrStoreUnavailable(err)
	}

	terminated := 0
	for _, session := range sessions {
		if session.IsTerminated() {
			continue
		}
		if err := s.terminate(ctx, session, reason); err != nil {
			return terminated, err
		}
		terminated++
	}
	return terminated, nil
}

func (s *sessionDomainService) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}
	return s.live(sessions), nil
}

func (s *sessionDomainService) ListByDevice(ctx context.Context, deviceID string) ([]*models.Session, error) {
	sessions, err := s.sessions.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}
	return s.live(sessions), nil
}

// enforceLimit terminates the eviction candidate when the user already holds
// the maximum number of live sessions.
func (s *sessionDomainService) enforceLimit(ctx context.Context, userID string) error {
	maxPerUser := s.cfg.MaxPerUser
	if maxPerUser <= 0 {
		maxPerUser = constants.MaxSessionsPerUserDefault
	}

	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	live := s.live(sessions)
	if len(live) < maxPerUser {
		return nil
	}

	victim := s.evictionCandidate(live)
	if err := s.terminate(ctx, victim, "evicted"); err != nil {
		return err
	}

	event := models.NewAuditEvent(constants.EventTypeSessionEvicted)
	event.UserID = userID
	event.SessionID = victim.SessionID
	event.DeviceID = victim.DeviceID
	s.audit.Emit(ctx, event)
	return nil
}

// evictionCandidate picks the session to terminate: oldest by creation under
// lrc, stalest by activity under lru.
func (s *sessionDomainService) evictionCandidate(sessions []*models.Session) *models.Session {
	sorted := make([]*models.Session, len(sessions))
	copy(sorted, sessions)

	if s.cfg.EvictionPolicy == constants.EvictLeastRecentlyUsed {
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].LastActivityAt.Before(sorted[j].LastActivityAt)
		})
	} else {
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		})
	}
	return sorted[0]
}

func (s *sessionDomainService) terminate(ctx context.Context, session *models.Session, reason string) error {
	session.Terminate(s.now())
	if err := s.sessions.Update(ctx, session, s.cfg.AuditRetention); err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	if err := s.sessions.Deindex(ctx, session, s.cfg.AuditRetention); err != nil {
		return errors.ErrStoreUnavailable(err)
	}

	event := models.NewAuditEvent(constants.EventTypeSessionTerminated)
	event.UserID = session.UserID
	event.SessionID = session.SessionID
	event.DeviceID = session.DeviceID
	event.Detail = reason
	s.audit.Emit(ctx, event)

	s.log.Info(ctx, "session terminated",
		logger.String("session_id", session.SessionID),
		logger.String("reason", reason),
	)
	return nil
}

// expire handles timeout-driven termination discovered on read. Failures are
// logged, not surfaced: the caller already gets the expiry error.
func (s *sessionDomainService) expire(ctx context.Context, session *models.Session, which string) {
	if err := s.terminate(ctx, session, "expired_"+which); err != nil {
		s.log.Warn(ctx, "failed to finalize expired session",
			logger.String("session_id", session.SessionID),
			logger.Err(err),
		)
	}
}

func (s *sessionDomainService) live(sessions []*models.Session) []*models.Session {
	now := s.now()
	out := make([]*models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.IsTerminated() {
			continue
		}
		if session.AbsoluteExpired(now, s.cfg.AbsoluteTimeout) || session.IdleExpired(now, s.cfg.IdleTimeout) {
			continue
		}
		out = append(out, session)
	}
	return out
}

func (s *sessionDomainService) recordTTL() time.Duration {
	return s.cfg.AbsoluteTimeout + s.cfg.AuditRetention
}
