package moderation

import (
	"errors"
	"time"

	"github.com/verdanthq/verdant/internal/models"
	"gorm.io/gorm"
)

// ErrTargetNotFound is returned when a report points at a target that
// does not exist or was already removed.
var ErrTargetNotFound = errors.New("report target not found")

// target abstracts over the entity kinds a report can point at. Each
// variant knows how to find its owner, hide itself, and remove itself,
// so the service never switches on the type string outside dispatch.
type target interface {
	// Owner returns the user who owns the target, or ErrTargetNotFound
	Owner(tx *gorm.DB, targetID string) (string, error)
	// Hidden reports the current hidden flag of the target
	Hidden(tx *gorm.DB, targetID string) (bool, error)
	// Hide sets the hidden flag and timestamp. The update is
	// conditional on the flag being clear; the return value reports
	// whether this call made the false-to-true transition, so two
	// racing hides cannot both claim the crossing.
	Hide(tx *gorm.DB, targetID string, at time.Time) (bool, error)
	// Remove deletes or suspends the target
	Remove(tx *gorm.DB, targetID string, at time.Time) error
}

// targets maps each report target type to its handler
var targets = map[models.ReportTargetType]target{
	models.ReportTargetPost:    postTarget{},
	models.ReportTargetComment: commentTarget{},
	models.ReportTargetUser:    userTarget{},
	models.ReportTargetEvent:   eventTarget{},
	models.ReportTargetShop:    shopTarget{},
	models.ReportTargetReview:  reviewTarget{},
}

// targetFor returns the handler for a target type
func targetFor(t models.ReportTargetType) (target, bool) {
	handler, ok := targets[t]
	return handler, ok
}

type postTarget struct{}

func (postTarget) Owner(tx *gorm.DB, id string) (string, error) {
	var post models.Post
	if err := tx.Select("id, author_id").First(&post, "id = ?", id).Error; err != nil {
		return "", wrapNotFound(err)
	}
	return post.AuthorID, nil
}

func (postTarget) Hidden(tx *gorm.DB, id string) (bool, error) {
	var post models.Post
	if err := tx.Select("id, is_hidden").First(&post, "id = ?", id).Error; err != nil {
		return false, wrapNotFound(err)
	}
	return post.IsHidden, nil
}

func (postTarget) Hide(tx *gorm.DB, id string, at time.Time) (bool, error) {
	res := tx.Model(&models.Post{}).Where("id = ? AND is_hidden = ?", id, false).
		Updates(map[string]interface{}{"is_hidden": true, "hidden_at": at})
	return res.RowsAffected > 0, res.Error
}

func (postTarget) Remove(tx *gorm.DB, id string, _ time.Time) error {
	return tx.Delete(&models.Post{}, "id = ?", id).Error
}

type commentTarget struct{}

func (commentTarget) Owner(tx *gorm.DB, id string) (string, error) {
	var comment models.Comment
	if err := tx.Select("id, author_id").First(&comment, "id = ?", id).Error; err != nil {
		return "", wrapNotFound(err)
	}
	return comment.AuthorID, nil
}

func (commentTarget) Hidden(tx *gorm.DB, id string) (bool, error) {
	var comment models.Comment
	if err := tx.Select("id, is_hidden").First(&comment, "id = ?", id).Error; err != nil {
		return false, wrapNotFound(err)
	}
	return comment.IsHidden, nil
}

func (commentTarget) Hide(tx *gorm.DB, id string, at time.Time) (bool, error) {
	res := tx.Model(&models.Comment{}).Where("id = ? AND is_hidden = ?", id, false).
		Updates(map[string]interface{}{"is_hidden": true, "hidden_at": at})
	return res.RowsAffected > 0, res.Error
}

func (commentTarget) Remove(tx *gorm.DB, id string, _ time.Time) error {
	return tx.Delete(&models.Comment{}, "id = ?", id).Error
}

// userTarget handles reports against accounts. Hiding a user means
// suspending the account; removal also suspends rather than deleting,
// account deletion stays a separate support flow.
type userTarget struct{}

func (userTarget) Owner(tx *gorm.DB, id string) (string, error) {
	var user models.User
	if err := tx.Select("id").First(&user, "id = ?", id).Error; err != nil {
		return "", wrapNotFound(err)
	}
	return user.ID, nil
}

func (userTarget) Hidden(tx *gorm.DB, id string) (bool, error) {
	var user models.User
	if err := tx.Select("id, is_suspended").First(&user, "id = ?", id).Error; err != nil {
		return false, wrapNotFound(err)
	}
	return user.IsSuspended, nil
}

func (userTarget) Hide(tx *gorm.DB, id string, at time.Time) (bool, error) {
	res := tx.Model(&models.User{}).Where("id = ? AND is_suspended = ?", id, false).
		Updates(map[string]interface{}{"is_suspended": true, "suspended_at": at})
	return res.RowsAffected > 0, res.Error
}

func (userTarget) Remove(tx *gorm.DB, id string, at time.Time) error {
	_, err := userTarget{}.Hide(tx, id, at)
	return err
}

type eventTarget struct{}

func (eventTarget) Owner(tx *gorm.DB, id string) (string, error) {
	var event models.Event
	if err := tx.Select("id, creator_id").First(&event, "id = ?", id).Error; err != nil {
		return "", wrapNotFound(err)
	}
	return event.CreatorID, nil
}

func (eventTarget) Hidden(tx *gorm.DB, id string) (bool, error) {
	var event models.Event
	if err := tx.Select("id, is_hidden").First(&event, "id = ?", id).Error; err != nil {
		return false, wrapNotFound(err)
	}
	return event.IsHidden, nil
}

func (eventTarget) Hide(tx *gorm.DB, id string, at time.Time) (bool, error) {
	res := tx.Model(&models.Event{}).Where("id = ? AND is_hidden = ?", id, false).
		Updates(map[string]interface{}{"is_hidden": true, "hidden_at": at})
	return res.RowsAffected > 0, res.Error
}

func (eventTarget) Remove(tx *gorm.DB, id string, _ time.Time) error {
	return tx.Delete(&models.Event{}, "id = ?", id).Error
}

type shopTarget struct{}

func (shopTarget) Owner(tx *gorm.DB, id string) (string, error) {
	var shop models.Shop
	if err := tx.Select("id, owner_id").First(&shop, "id = ?", id).Error; err != nil {
		return "", wrapNotFound(err)
	}
	return shop.OwnerID, nil
}

func (shopTarget) Hidden(tx *gorm.DB, id string) (bool, error) {
	var shop models.Shop
	if err := tx.Select("id, is_hidden").First(&shop, "id = ?", id).Error; err != nil {
		return false, wrapNotFound(err)
	}
	return shop.IsHidden, nil
}

func (shopTarget) Hide(tx *gorm.DB, id string, at time.Time) (bool, error) {
	res := tx.Model(&models.Shop{}).Where("id = ? AND is_hidden = ?", id, false).
		Updates(map[string]interface{}{"is_hidden": true, "hidden_at": at})
	return res.RowsAffected > 0, res.Error
}

func (shopTarget) Remove(tx *gorm.DB, id string, _ time.Time) error {
	return tx.Delete(&models.Shop{}, "id = ?", id).Error
}

type reviewTarget struct{}

func (reviewTarget) Owner(tx *gorm.DB, id string) (string, error) {
	var review models.ShopReview
	if err := tx.Select("id, author_id").First(&review, "id = ?", id).Error; err != nil {
		return "", wrapNotFound(err)
	}
	return review.AuthorID, nil
}

func (reviewTarget) Hidden(tx *gorm.DB, id string) (bool, error) {
	var review models.ShopReview
	if err := tx.Select("id, is_hidden").First(&review, "id = ?", id).Error; err != nil {
		return false, wrapNotFound(err)
	}
	return review.IsHidden, nil
}

func (reviewTarget) Hide(tx *gorm.DB, id string, at time.Time) (bool, error) {
	res := tx.Model(&models.ShopReview{}).Where("id = ? AND is_hidden = ?", id, false).
		Updates(map[string]interface{}{"is_hidden": true, "hidden_at": at})
	return res.RowsAffected > 0, res.Error
}

func (reviewTarget) Remove(tx *gorm.DB, id string, _ time.Time) error {
	return tx.Delete(&models.ShopReview{}, "id = ?", id).Error
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTargetNotFound
	}
	return err
}
