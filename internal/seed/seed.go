// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/lifecycle"
	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var tagPool = []string{
	"go", "programming", "writing", "blogging", "tutorial", "opinion",
	"devops", "databases", "web", "career", "productivity", "design",
	"open-source", "testing", "cloud", "security",
}

// Seeder builds demo entities and persists them to the database.
type Seeder struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll wipes every seeded table. Postgres only.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE likes, comments, posts, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Seed populates the database with test data
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	posts, err := s.SeedPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created (%d already due for the first sweep)", len(posts), dueCount(posts, time.Now()))

	if err := s.SeedEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedUsers creates count users, the first of which is an admin account.
// All seeded users share the password "password123".
func (s *Seeder) SeedUsers(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	admin := models.User{
		Username:  "admin",
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		Role:      models.RoleAdmin,
		AvatarURL: "https://i.pravatar.cc/150?u=admin",
	}
	if err := s.db.Create(&admin).Error; err == nil {
		users = append(users, admin)
	}

	for i := len(users); i < count; i++ {
		username := strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", i)
		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@example.com", username),
			Password:  string(hashedPassword),
			Role:      models.RoleUser,
			AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		}
		if err := s.db.Create(&user).Error; err != nil {
			log.Printf("Failed to create user %s: %v", username, err)
			continue
		}
		users = append(users, user)
	}

	return users, nil
}

// SeedPosts creates count posts with a realistic status mix: roughly 60%
// published, 25% drafts, and 15% scheduled. A few of the scheduled posts are
// already overdue so the first publisher sweep has something to promote.
func (s *Seeder) SeedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)

	for i := 0; i < count; i++ {
		user := users[s.r.Intn(len(users))]
		post := models.Post{
			Title:       gofakeit.Sentence(5),
			Description: gofakeit.Sentence(12),
			Content:     gofakeit.Paragraph(2, 4, 8, "\n\n"),
			CoverImage:  fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
			Tags:        s.pickTags(),
			AuthorID:    user.ID,
		}

		// realistic created_at spread over the last 90 days
		daysBack := s.r.Intn(90)
		post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(s.r.Intn(24))*time.Hour)

		switch roll := s.r.Float32(); {
		case roll < 0.60:
			post.Status = models.PostStatusPublished
		case roll < 0.85:
			post.Status = models.PostStatusDraft
		default:
			post.Status = models.PostStatusScheduled
			var at time.Time
			if s.r.Float32() < 0.3 {
				// overdue: due in the past, promoted by the next sweep
				at = time.Now().Add(-time.Duration(s.r.Intn(48)+1) * time.Hour)
			} else {
				at = time.Now().Add(time.Duration(s.r.Intn(14*24)+1) * time.Hour)
			}
			post.ScheduledAt = &at
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// SeedEngagement adds comments and likes to published posts only; nobody can
// see the rest.
func (s *Seeder) SeedEngagement(users []models.User, posts []models.Post) error {
	comments := 0
	likes := 0

	for i := range posts {
		if posts[i].Status != models.PostStatusPublished {
			continue
		}

		for c := s.r.Intn(5); c > 0; c-- {
			comment := models.Comment{
				Content:  gofakeit.Sentence(s.r.Intn(15) + 3),
				AuthorID: users[s.r.Intn(len(users))].ID,
				PostID:   posts[i].ID,
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
			comments++
		}

		for _, user := range users {
			if s.r.Float32() < 0.2 {
				like := models.Like{UserID: user.ID, PostID: posts[i].ID}
				// A user may roll the same post twice across runs.
				if err := s.db.Where(like).FirstOrCreate(&like).Error; err != nil {
					return err
				}
				likes++
			}
		}
	}

	log.Printf("%d comments and %d likes created", comments, likes)
	return nil
}

// dueCount reports how many seeded posts the first publisher sweep will
// promote.
func dueCount(posts []models.Post, now time.Time) int {
	n := 0
	for i := range posts {
		if lifecycle.Due(&posts[i], now) {
			n++
		}
	}
	return n
}

func (s *Seeder) pickTags() []string {
	n := s.r.Intn(3) + 2
	picked := make([]string, 0, n)
	seen := map[string]bool{}
	for len(picked) < n {
		tag := tagPool[s.r.Intn(len(tagPool))]
		if !seen[tag] {
			seen[tag] = true
			picked = append(picked, tag)
		}
	}
	return picked
}
