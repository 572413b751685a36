// Package services holds the follow-request state machine and the visibility
// rule that content handlers consult.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/snap-point/follow-api/metrics"
	"github.com/snap-point/follow-api/models"
	"github.com/snap-point/follow-api/notify"
	"github.com/snap-point/follow-api/repositories"
	"github.com/snap-point/follow-api/signing"
	"gorm.io/gorm"
)

const confirmPath = "/api/follow-requests/confirm/"

// NoticeQueue accepts notices for delivery after a transition committed.
// Enqueue must not block.
type NoticeQueue interface {
	Enqueue(notice notify.FollowRequestNotice) bool
}

// FollowResult is the outcome of InitiateFollow. IsDirect is set when a
// public target was followed without a request; it is not persisted.
type FollowResult struct {
	Request  *models.FollowRequest `json:"request"`
	Status   models.FollowStatus   `json:"status"`
	IsDirect bool                  `json:"isDirect"`
}

// FollowService is the only writer of follow requests and follower edges.
// Every operation reads and writes one ordered pair inside one transaction.
type FollowService struct {
	store   *repositories.RelationshipStore
	graph   *repositories.Graph
	codec   *signing.Codec
	queue   NoticeQueue
	baseURL string

	// beforeRetry runs between a conflicted transaction and its replay.
	beforeRetry func()
}

func NewFollowService(store *repositories.RelationshipStore, graph *repositories.Graph, codec *signing.Codec, queue NoticeQueue, baseURL string) *FollowService {
	return &FollowService{
		store:   store,
		graph:   graph,
		codec:   codec,
		queue:   queue,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// InitiateFollow follows a public target directly or files a pending request
// toward a private one. Rejected and deleted rows are reopened in place.
func (s *FollowService) InitiateFollow(ctx context.Context, actorUserID uint, targetUsername string) (*FollowResult, error) {
	const op = "initiate"

	actor, target, err := s.pair(ctx, actorUserID, targetUsername)
	if err != nil {
		return nil, s.refuse(op, err)
	}

	var result *FollowResult
	err = s.inTx(ctx, func(store *repositories.RelationshipStore, graph *repositories.Graph) error {
		result = nil

		request, err := lookup(store, actor.UserID, target.UserID)
		if err != nil {
			return err
		}
		if request != nil {
			switch {
			case request.Status == models.FollowStatusPending:
				return ErrDuplicateRequest
			case request.Status == models.FollowStatusAccepted:
				return ErrAlreadyFollowing
			case !request.Status.Rerequestable():
				return fmt.Errorf("follow request %d has unexpected status %q", request.ID, request.Status)
			}
		}

		// Privacy may have changed since the target was resolved.
		fresh, err := store.ProfileByID(target.ID)
		if err != nil {
			return err
		}
		target = fresh

		status := models.FollowStatusPending
		direct := !target.Private
		if direct {
			if err := graph.AddFollower(target, actor, false); err != nil {
				return err
			}
			status = models.FollowStatusAccepted
		}

		if request == nil {
			request = &models.FollowRequest{FromUserID: actor.UserID, ToUserID: target.UserID, Status: status}
			err = store.CreateRequest(request)
		} else {
			err = store.UpdateRequestStatus(request, status)
		}
		if err != nil {
			return err
		}

		result = &FollowResult{Request: request, Status: status, IsDirect: direct}
		return nil
	})
	if err != nil {
		return nil, s.refuse(op, err)
	}

	s.record(op, actor, target, result.Status)
	if result.IsDirect {
		s.graph.Invalidate(target.ID, actor.ID)
	} else {
		s.notify(actor, target, result.Request)
	}
	return result, nil
}

// CancelPending withdraws the actor's pending request toward target.
func (s *FollowService) CancelPending(ctx context.Context, actorUserID uint, targetUsername string) error {
	const op = "cancel"

	actor, target, err := s.pair(ctx, actorUserID, targetUsername)
	if err != nil {
		return s.refuse(op, err)
	}

	err = s.inTx(ctx, func(store *repositories.RelationshipStore, _ *repositories.Graph) error {
		request, err := lookup(store, actor.UserID, target.UserID)
		if err != nil {
			return err
		}
		if request == nil || request.Status != models.FollowStatusPending {
			return ErrNoPendingRequest
		}
		return store.UpdateRequestStatus(request, models.FollowStatusDeleted)
	})
	if err != nil {
		return s.refuse(op, err)
	}

	s.record(op, actor, target, models.FollowStatusDeleted)
	return nil
}

// ResolveActionToken applies the accept or reject decision carried by token
// to the pending request addressed to the actor. The token subject is the
// requesting account.
func (s *FollowService) ResolveActionToken(ctx context.Context, actorUserID uint, token string) (*models.FollowRequest, error) {
	const op = "resolve"

	claims, ok := s.codec.Verify(token)
	if !ok {
		return nil, s.refuse(op, ErrInvalidToken)
	}
	if claims.Recipient != 0 && claims.Recipient != actorUserID {
		return nil, s.refuse(op, ErrPermissionDenied)
	}
	return s.resolve(ctx, op, actorUserID, claims)
}

// ConfirmActionToken resolves a token opened from an email link without a
// session. Only tokens bound to a recipient are honoured; the recipient acts.
func (s *FollowService) ConfirmActionToken(ctx context.Context, token string) (*models.FollowRequest, error) {
	const op = "confirm"

	claims, ok := s.codec.Verify(token)
	if !ok {
		return nil, s.refuse(op, ErrInvalidToken)
	}
	if claims.Recipient == 0 {
		return nil, s.refuse(op, ErrPermissionDenied)
	}
	return s.resolve(ctx, op, claims.Recipient, claims)
}

func (s *FollowService) resolve(ctx context.Context, op string, actorUserID uint, claims signing.Claims) (*models.FollowRequest, error) {
	var (
		request      *models.FollowRequest
		from, target *models.Profile
	)
	err := s.inTx(ctx, func(store *repositories.RelationshipStore, graph *repositories.Graph) error {
		var err error
		request, err = lookup(store, claims.Subject, actorUserID)
		if err != nil {
			return err
		}
		if request == nil {
			return misdirected(store, claims)
		}
		if request.Status != models.FollowStatusPending {
			return ErrNoPendingRequest
		}

		if claims.Action == signing.ActionReject {
			return store.UpdateRequestStatus(request, models.FollowStatusRejected)
		}

		if from, err = store.ProfileByUserID(claims.Subject); err != nil {
			return userErr(err)
		}
		if target, err = store.ProfileByUserID(actorUserID); err != nil {
			return userErr(err)
		}
		// A target that went public meanwhile still honours the request.
		if err := graph.AddFollower(target, from, target.Private); err != nil {
			return err
		}
		return store.UpdateRequestStatus(request, models.FollowStatusAccepted)
	})
	if err != nil {
		return nil, s.refuse(op, err)
	}

	metrics.FollowTransitions.WithLabelValues(op, string(request.Status)).Inc()
	logrus.WithFields(logrus.Fields{
		"op":        op,
		"from_user": request.FromUserID,
		"to_user":   request.ToUserID,
		"status":    request.Status,
	}).Info("follow request resolved")

	if request.Status == models.FollowStatusAccepted {
		s.graph.Invalidate(target.ID, from.ID)
	}
	return request, nil
}

// Unfollow ends the actor's accepted follow of target. Repeating it after
// success succeeds again.
func (s *FollowService) Unfollow(ctx context.Context, actorUserID uint, targetUsername string) error {
	const op = "unfollow"

	actor, target, err := s.pair(ctx, actorUserID, targetUsername)
	if err != nil {
		return s.refuse(op, err)
	}
	ended, err := s.endFollow(ctx, actor, target)
	if err != nil {
		return s.refuse(op, err)
	}
	if ended {
		s.record(op, actor, target, models.FollowStatusDeleted)
	}
	return nil
}

// RemoveFollower lets the actor drop one of its followers.
func (s *FollowService) RemoveFollower(ctx context.Context, actorUserID uint, followerUsername string) error {
	const op = "remove_follower"

	actor, follower, err := s.pair(ctx, actorUserID, followerUsername)
	if err != nil {
		return s.refuse(op, err)
	}
	ended, err := s.endFollow(ctx, follower, actor)
	if err != nil {
		return s.refuse(op, err)
	}
	if ended {
		s.record(op, follower, actor, models.FollowStatusDeleted)
	}
	return nil
}

// endFollow deletes the accepted row of the pair and its edge. It reports
// false without error when the follow had already ended; a row that was
// cancelled before it was ever accepted is not a follow.
func (s *FollowService) endFollow(ctx context.Context, follower, target *models.Profile) (bool, error) {
	var ended bool
	err := s.inTx(ctx, func(store *repositories.RelationshipStore, graph *repositories.Graph) error {
		ended = false

		request, err := lookup(store, follower.UserID, target.UserID)
		if err != nil {
			return err
		}

		switch {
		case request == nil:
			return ErrNotFollowing
		case request.Status == models.FollowStatusAccepted:
			if err := store.UpdateRequestStatus(request, models.FollowStatusDeleted); err != nil {
				return err
			}
			ended = true
		case request.Unfollowed():
		default:
			return ErrNotFollowing
		}
		return graph.RemoveFollower(target, follower)
	})
	if err != nil {
		return false, err
	}

	s.graph.Invalidate(target.ID, follower.ID)
	return ended, nil
}

// ListPendingIncoming returns the requests waiting for the actor's decision.
func (s *FollowService) ListPendingIncoming(ctx context.Context, actorUserID uint) ([]repositories.PendingRequest, error) {
	return s.store.WithContext(ctx).PendingIncoming(actorUserID)
}

// ListPendingOutgoing returns the actor's own requests still awaiting a
// decision.
func (s *FollowService) ListPendingOutgoing(ctx context.Context, actorUserID uint) ([]repositories.PendingRequest, error) {
	return s.store.WithContext(ctx).PendingOutgoing(actorUserID)
}

// SetPrivacy changes the actor's privacy flag. Pending requests stay pending
// and existing followers are kept.
func (s *FollowService) SetPrivacy(ctx context.Context, actorUserID uint, private bool) (*models.Profile, error) {
	store := s.store.WithContext(ctx)

	profile, err := store.EnsureProfile(actorUserID)
	if err != nil {
		return nil, userErr(err)
	}
	if err := store.UpdatePrivacy(profile.ID, private); err != nil {
		return nil, userErr(err)
	}
	profile.Private = private

	logrus.WithFields(logrus.Fields{"profile": profile.ID, "private": private}).Info("profile privacy changed")
	return profile, nil
}

// pair resolves the actor and the target profile, refusing self-directed
// operations before any request row is read.
func (s *FollowService) pair(ctx context.Context, actorUserID uint, targetUsername string) (*models.Profile, *models.Profile, error) {
	store := s.store.WithContext(ctx)

	actor, err := store.EnsureProfile(actorUserID)
	if err != nil {
		return nil, nil, userErr(err)
	}
	target, err := store.ProfileByUsername(targetUsername)
	if err != nil {
		return nil, nil, userErr(err)
	}
	if actor.ID == target.ID {
		return nil, nil, ErrSelfFollow
	}
	return actor, target, nil
}

// inTx runs fn with tx-bound stores. A transaction that lost a race on the
// pair's unique index is replayed once so it observes the winner's row.
func (s *FollowService) inTx(ctx context.Context, fn func(*repositories.RelationshipStore, *repositories.Graph) error) error {
	run := func() error {
		return s.store.Transaction(ctx, func(tx *gorm.DB) error {
			return fn(s.store.WithTx(tx), s.graph.WithTx(tx))
		})
	}

	err := run()
	if errors.Is(err, repositories.ErrConflict) {
		logrus.WithError(err).Debug("follow transaction conflicted, retrying")
		metrics.FollowRetries.Inc()
		if s.beforeRetry != nil {
			s.beforeRetry()
		}
		err = run()
	}
	return err
}

func (s *FollowService) notify(from, to *models.Profile, request *models.FollowRequest) {
	if s.queue == nil {
		return
	}

	log := logrus.WithFields(logrus.Fields{"from_user": from.UserID, "to_user": to.UserID})

	accept, err := s.codec.SignFor(from.UserID, to.UserID, signing.ActionAccept)
	if err != nil {
		log.WithError(err).Error("failed to sign accept token")
		return
	}
	reject, err := s.codec.SignFor(from.UserID, to.UserID, signing.ActionReject)
	if err != nil {
		log.WithError(err).Error("failed to sign reject token")
		return
	}

	notice := notify.FollowRequestNotice{
		ID:           uuid.NewString(),
		FromUserID:   from.UserID,
		FromUsername: from.User.Username,
		ToUserID:     to.UserID,
		ToUsername:   to.User.Username,
		ToEmail:      to.User.Email,
		AcceptToken:  accept,
		RejectToken:  reject,
		AcceptURL:    s.baseURL + confirmPath + accept,
		RejectURL:    s.baseURL + confirmPath + reject,
		CreatedAt:    time.Now().UTC(),
	}
	if request != nil && !request.UpdatedAt.IsZero() {
		notice.CreatedAt = request.UpdatedAt.UTC()
	}

	if !s.queue.Enqueue(notice) {
		log.Warn("follow request notice dropped")
	}
}

func (s *FollowService) record(op string, from, to *models.Profile, status models.FollowStatus) {
	metrics.FollowTransitions.WithLabelValues(op, string(status)).Inc()
	logrus.WithFields(logrus.Fields{
		"op":        op,
		"from_user": from.UserID,
		"to_user":   to.UserID,
		"status":    status,
	}).Info("follow transition applied")
}

func (s *FollowService) refuse(op string, err error) error {
	metrics.FollowRejections.WithLabelValues(op, reason(err)).Inc()
	return err
}

// lookup returns the locked row of the pair, or nil when there is none.
func lookup(store *repositories.RelationshipStore, fromUserID, toUserID uint) (*models.FollowRequest, error) {
	request, err := store.FindRequest(fromUserID, toUserID, true)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return request, err
}

// misdirected explains why a token found no row for its redeemer. An unbound
// token whose requester is still waiting on someone else was opened
// by the wrong account.
func misdirected(store *repositories.RelationshipStore, claims signing.Claims) error {
	if claims.Recipient != 0 {
		return ErrNoPendingRequest
	}
	waiting, err := store.HasPendingFrom(claims.Subject)
	if err != nil {
		return err
	}
	if waiting {
		return ErrPermissionDenied
	}
	return ErrNoPendingRequest
}

func userErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
