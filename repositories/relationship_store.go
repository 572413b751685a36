package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snap-point/follow-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipStore persists accounts, profiles and follow requests. A store
// bound to a transaction with WithTx sees and writes only through it.
type RelationshipStore struct {
	DB *gorm.DB
}

func NewRelationshipStore(db *gorm.DB) *RelationshipStore {
	return &RelationshipStore{DB: db}
}

func (s *RelationshipStore) WithTx(tx *gorm.DB) *RelationshipStore {
	return &RelationshipStore{DB: tx}
}

func (s *RelationshipStore) WithContext(ctx context.Context) *RelationshipStore {
	return &RelationshipStore{DB: s.DB.WithContext(ctx)}
}

// Transaction runs fn in a database transaction. A unique-constraint
// violation inside fn is reported as ErrConflict.
func (s *RelationshipStore) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.DB.WithContext(ctx).Transaction(fn)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// CreateAccount registers a user together with its private-by-default
// profile. It is the hook the account service calls at registration.
func (s *RelationshipStore) CreateAccount(user *models.User) (*models.Profile, error) {
	profile := models.NewProfile(0)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Omit(clause.Associations).Create(profile).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	profile.User = *user
	return profile, nil
}

// EnsureProfile returns the profile of userID, creating it when the account
// predates the social graph.
func (s *RelationshipStore) EnsureProfile(userID uint) (*models.Profile, error) {
	profile := models.NewProfile(userID)
	err := s.DB.Omit(clause.Associations).
		Where(models.Profile{UserID: userID}).
		Attrs(models.Profile{Private: true}).
		FirstOrCreate(profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.ProfileByID(profile.ID)
}

func (s *RelationshipStore) ProfileByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.Preload("User").First(&profile, id).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *RelationshipStore) ProfileByUserID(userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *RelationshipStore) ProfileByUsername(username string) (*models.Profile, error) {
	var profile models.Profile
	err := s.DB.Preload("User").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.username = ?", username).
		First(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *RelationshipStore) UpdatePrivacy(profileID uint, private bool) error {
	result := s.DB.Model(&models.Profile{}).Where("id = ?", profileID).Update("private", private)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindRequest loads the row of the ordered pair. With lock set the row is
// read FOR UPDATE on databases that support row locks.
func (s *RelationshipStore) FindRequest(fromUserID, toUserID uint, lock bool) (*models.FollowRequest, error) {
	query := s.DB
	if lock && s.DB.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var request models.FollowRequest
	err := query.Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).First(&request).Error
	if err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (s *RelationshipStore) CreateRequest(request *models.FollowRequest) error {
	if !request.Status.Valid() {
		return fmt.Errorf("invalid follow request status %q", request.Status)
	}
	if request.Status == models.FollowStatusAccepted && request.AcceptedAt == nil {
		now := time.Now().UTC()
		request.AcceptedAt = &now
	}
	return translate(s.DB.Create(request).Error)
}

// UpdateRequestStatus moves the row to status. Accepting stamps AcceptedAt
// and reopening as pending clears it; other moves leave it as it was.
func (s *RelationshipStore) UpdateRequestStatus(request *models.FollowRequest, status models.FollowStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid follow request status %q", status)
	}

	acceptedAt := request.AcceptedAt
	switch status {
	case models.FollowStatusAccepted:
		now := time.Now().UTC()
		acceptedAt = &now
	case models.FollowStatusPending:
		acceptedAt = nil
	}

	result := s.DB.Model(request).Updates(map[string]interface{}{
		"status":      status,
		"accepted_at": acceptedAt,
	})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	request.Status = status
	request.AcceptedAt = acceptedAt
	return nil
}

// HasPendingFrom reports whether fromUserID has a pending request toward
// anyone.
func (s *RelationshipStore) HasPendingFrom(fromUserID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.FollowRequest{}).
		Where("from_user_id = ? AND status = ?", fromUserID, models.FollowStatusPending).
		Count(&count).Error
	return count > 0, err
}

// PendingRequest is a pending follow request joined with the username of the
// other side of the pair.
type PendingRequest struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// PendingIncoming lists pending requests addressed to toUserID, oldest first.
func (s *RelationshipStore) PendingIncoming(toUserID uint) ([]PendingRequest, error) {
	return s.pending("follow_requests.from_user_id", "follow_requests.to_user_id = ?", toUserID)
}

// PendingOutgoing lists pending requests sent by fromUserID, oldest first.
func (s *RelationshipStore) PendingOutgoing(fromUserID uint) ([]PendingRequest, error) {
	return s.pending("follow_requests.to_user_id", "follow_requests.from_user_id = ?", fromUserID)
}

func (s *RelationshipStore) pending(otherColumn, where string, userID uint) ([]PendingRequest, error) {
	requests := make([]PendingRequest, 0)
	err := s.DB.Model(&models.FollowRequest{}).
		Select("follow_requests.id, users.id AS user_id, users.username, follow_requests.created_at").
		Joins("JOIN users ON users.id = "+otherColumn).
		Where(where, userID).
		Where("follow_requests.status = ?", models.FollowStatusPending).
		Order("follow_requests.created_at ASC, follow_requests.id ASC").
		Scan(&requests).Error
	return requests, err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
