package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/trending"
	"github.com/verdanthq/verdant/internal/util"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(100)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating follows...")
	if err := s.seedFollows(users, 400); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating posts...")
	posts, err := s.seedPosts(users, 500)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating comments...")
	if err := s.seedComments(users, posts, 1000); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	log("Creating likes...")
	if err := s.seedLikes(users, posts, 2000); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	log("Creating shops and events...")
	if err := s.seedDirectory(users); err != nil {
		return fmt.Errorf("failed to seed directory: %w", err)
	}

	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashedPasswordStr := string(hashedPassword)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Email:        fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Username:     username,
			DisplayName:  gofakeit.Name(),
			Bio:          gofakeit.Sentence(12),
			Location:     gofakeit.City(),
			PasswordHash: &hashedPasswordStr,
			AvatarURL:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
			Genres:       randomGenres(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedFollows(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		followee := users[rand.Intn(len(users))]
		if follower.ID == followee.ID {
			continue
		}
		follow := models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
		// Duplicate pairs hit the unique index; skip them
		if err := s.db.Create(&follow).Error; err != nil {
			continue
		}
		s.db.Model(&models.User{}).Where("id = ?", followee.ID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1"))
		s.db.Model(&models.User{}).Where("id = ?", follower.ID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1"))
	}
	return nil
}

func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		body := gofakeit.Paragraph(1, 3, 12, " ")
		if rand.Intn(3) == 0 {
			body += " #" + trending.Genres[rand.Intn(len(trending.Genres))]
		}
		post := models.Post{
			AuthorID:  author.ID,
			Body:      body,
			Genres:    randomGenres(),
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		if err := s.attachHashtags(&post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) attachHashtags(post *models.Post) error {
	for _, name := range util.ExtractHashtags(post.Body) {
		var tag models.Hashtag
		err := s.db.Where("name = ?", name).FirstOrCreate(&tag, models.Hashtag{Name: name}).Error
		if err != nil {
			return err
		}
		link := models.PostHashtag{PostID: post.ID, HashtagID: tag.ID}
		if err := s.db.Create(&link).Error; err != nil {
			continue
		}
	}
	return nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]
		comment := models.Comment{
			PostID:   post.ID,
			AuthorID: author.ID,
			Body:     gofakeit.Sentence(10),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
		s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
	}
	return nil
}

func (s *Seeder) seedLikes(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]
		like := models.Like{UserID: user.ID, PostID: post.ID}
		if err := s.db.Create(&like).Error; err != nil {
			continue
		}
		s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1"))
	}
	return nil
}

func (s *Seeder) seedDirectory(users []models.User) error {
	for i := 0; i < 15; i++ {
		owner := users[rand.Intn(len(users))]
		shop := models.Shop{
			OwnerID:     owner.ID,
			Name:        gofakeit.Company() + " Nursery",
			Description: gofakeit.Sentence(15),
			Location:    gofakeit.City(),
			Website:     gofakeit.URL(),
			Genres:      randomGenres(),
		}
		if err := s.db.Create(&shop).Error; err != nil {
			return err
		}
	}

	for i := 0; i < 10; i++ {
		creator := users[rand.Intn(len(users))]
		starts := gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 2, 0))
		event := models.Event{
			CreatorID:   creator.ID,
			Title:       gofakeit.Sentence(4),
			Description: gofakeit.Sentence(20),
			Location:    gofakeit.City(),
			StartsAt:    starts,
		}
		if err := s.db.Create(&event).Error; err != nil {
			return err
		}
	}

	return nil
}

func randomGenres() models.StringArray {
	n := 1 + rand.Intn(3)
	picked := make(models.StringArray, 0, n)
	seen := map[string]bool{}
	for len(picked) < n {
		g := trending.Genres[rand.Intn(len(trending.Genres))]
		if !seen[g] {
			seen[g] = true
			picked = append(picked, g)
		}
	}
	return picked
}
