// Package seed populates a development database with demo users, groups,
// and notices. Notices are posted through the regular commit pipeline so
// tags, mentions, and counters come out the same way they would in
// production.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"murmur/internal/models"
	"murmur/internal/parser"
	"murmur/internal/repository"
	"murmur/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumNotices  int
	ShouldClean bool
}

var (
	deviceNames = []string{"web", "sms", "im", "api"}

	groupNames = []string{
		"coffee", "cycling", "gardening", "photography", "booksclub",
		"homelab", "runners", "vinyl", "chess", "aquariums",
	}

	tagPool = []string{
		"monday", "coffee", "commute", "weekend", "release", "bugs",
		"music", "rain", "lunch", "travel", "books", "deadline",
	}
)

// Seed fills the database. Safe to run repeatedly; devices and groups are
// created once, users and notices accumulate.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("seeding %d users and %d notices", opts.NumUsers, opts.NumNotices)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Printf("warning: could not clear existing data: %v", err)
		}
	}

	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for demo data
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	p, err := parser.New(parser.DefaultTagPattern, parser.DefaultUsernamePattern)
	if err != nil {
		return fmt.Errorf("build parser: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	tagRepo := repository.NewTagRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	notices := service.NewNoticeService(noticeRepo, userRepo, deviceRepo, tagRepo, groupRepo, p)
	groups := service.NewGroupService(groupRepo, userRepo, p)

	ctx := context.Background()

	devices, err := createDevices(ctx, deviceRepo)
	if err != nil {
		return fmt.Errorf("create devices: %w", err)
	}

	users, err := createUsers(ctx, userRepo, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	if err := createGroups(ctx, groups, users, r); err != nil {
		return fmt.Errorf("create groups: %w", err)
	}

	createFollowMesh(ctx, relRepo, users, r)

	created := createNotices(ctx, notices, users, devices, r, opts.NumNotices)
	log.Printf("created %d notices", created)

	return nil
}

func clearData(db *gorm.DB) error {
	sql := `TRUNCATE TABLE notice_tags, notice_groups, notice_replies, user_favorites,
		group_members, follows, blocks, notices, tags, groups, devices, user_infos, users
		RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createDevices(ctx context.Context, repo repository.DeviceRepository) ([]*models.Device, error) {
	devices := make([]*models.Device, 0, len(deviceNames))
	for _, name := range deviceNames {
		d, err := repo.FirstOrCreate(ctx, name, "")
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func createUsers(ctx context.Context, repo repository.UserRepository, count int) ([]*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		username := strings.ToLower(fmt.Sprintf("%s%d", gofakeit.Username(), i))
		user := &models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: string(hashed),
			Bio:      gofakeit.Sentence(8),
		}
		if err := repo.Create(ctx, user); err != nil {
			log.Printf("skipping user %s: %v", username, err)
			continue
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users created")
	}
	return users, nil
}

func createGroups(ctx context.Context, groups *service.GroupService, users []*models.User, r *rand.Rand) error {
	for i, name := range groupNames {
		owner := users[r.Intn(len(users))]
		g, err := groups.CreateGroup(ctx, service.CreateGroupInput{
			OwnerID:  owner.ID,
			Name:     name,
			IsClosed: i%4 == 3,
		})
		if err != nil {
			// Already present from an earlier run.
			continue
		}
		// A handful of extra members per group.
		for j := 0; j < 3; j++ {
			member := users[r.Intn(len(users))]
			if _, err := groups.Join(ctx, member.ID, g.Name); err != nil {
				log.Printf("join %s: %v", g.Name, err)
			}
		}
	}
	return nil
}

func createFollowMesh(ctx context.Context, repo repository.RelationshipRepository, users []*models.User, r *rand.Rand) {
	for _, u := range users {
		for i := 0; i < 4; i++ {
			target := users[r.Intn(len(users))]
			if target.ID == u.ID {
				continue
			}
			if _, err := repo.CreateFollow(ctx, u.ID, target.ID); err != nil {
				log.Printf("follow %d -> %d: %v", u.ID, target.ID, err)
			}
		}
	}
}

func createNotices(ctx context.Context, notices *service.NoticeService, users []*models.User, devices []*models.Device, r *rand.Rand, count int) int {
	created := 0
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		_, err := notices.PostNotice(ctx, service.PostNoticeInput{
			AuthorID: author.ID,
			Text:     noticeText(users, r),
			Via:      devices[r.Intn(len(devices))].Name,
		})
		if err != nil {
			log.Printf("post notice: %v", err)
			continue
		}
		created++
	}
	return created
}

// noticeText produces a short status line, sometimes carrying a #tag, a
// !group reference, or an @mention of another seeded user.
func noticeText(users []*models.User, r *rand.Rand) string {
	var sb strings.Builder
	sb.WriteString(gofakeit.Sentence(r.Intn(8) + 3))

	if r.Float32() < 0.4 {
		sb.WriteString(" #")
		sb.WriteString(tagPool[r.Intn(len(tagPool))])
	}
	if r.Float32() < 0.2 {
		sb.WriteString(" !")
		sb.WriteString(groupNames[r.Intn(len(groupNames))])
	}
	if r.Float32() < 0.3 {
		sb.WriteString(" @")
		sb.WriteString(users[r.Intn(len(users))].Username)
	}

	text := sb.String()
	if len(text) > 140 {
		text = text[:140]
	}
	return strings.TrimSpace(text)
}
