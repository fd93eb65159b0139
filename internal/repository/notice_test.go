package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDevice(t *testing.T) *models.Device {
	t.Helper()
	d := &models.Device{Name: fmt.Sprintf("dev_%d", time.Now().UnixNano())}
	require.NoError(t, testDB.Create(d).Error)
	return d
}

func TestNoticeRepository_Commit(t *testing.T) {
	resetTables(t)
	repo := NewNoticeRepository(testDB)
	users := NewUserRepository(testDB)
	ctx := context.Background()

	author := makeUser(t, "nc")
	require.NoError(t, users.Create(ctx, author))
	device := makeDevice(t)

	tagGo := models.Tag{Name: "golang"}
	tagTea := models.Tag{Name: "tea", UseCount: 5}
	require.NoError(t, testDB.Create(&tagGo).Error)
	require.NoError(t, testDB.Create(&tagTea).Error)

	group := models.Group{Name: "club", OwnerID: author.ID, NoticesCount: 2}
	require.NoError(t, testDB.Create(&group).Error)

	earlier := &models.Notice{Posted: time.Now().Add(-time.Hour), AuthorID: author.ID, Text: "first", ViaID: device.ID}
	require.NoError(t, testDB.Create(earlier).Error)

	notice := &models.Notice{
		Posted:   time.Now(),
		AuthorID: author.ID,
		Text:     "second #golang #tea !club",
		ViaID:    device.ID,
	}
	err := repo.Commit(ctx, notice,
		[]models.Tag{tagGo, tagTea},
		[]models.Group{group},
		[]models.Notice{*earlier},
	)
	require.NoError(t, err)
	require.NotZero(t, notice.ID)

	t.Run("last notice pointer moved", func(t *testing.T) {
		info, err := users.GetInfo(ctx, author.ID)
		require.NoError(t, err)
		require.NotNil(t, info.LastNoticeID)
		assert.Equal(t, notice.ID, *info.LastNoticeID)
	})

	t.Run("tag use counts bumped once each", func(t *testing.T) {
		var got models.Tag
		require.NoError(t, testDB.First(&got, tagGo.ID).Error)
		assert.Equal(t, uint(1), got.UseCount)
		var gotTea models.Tag
		require.NoError(t, testDB.First(&gotTea, tagTea.ID).Error)
		assert.Equal(t, uint(6), gotTea.UseCount)
	})

	t.Run("device and group counters bumped", func(t *testing.T) {
		var d models.Device
		require.NoError(t, testDB.First(&d, device.ID).Error)
		assert.Equal(t, uint(1), d.NoticesCount)

		var g models.Group
		require.NoError(t, testDB.First(&g, group.ID).Error)
		assert.Equal(t, uint(3), g.NoticesCount)
	})

	t.Run("associations attached", func(t *testing.T) {
		got, err := repo.GetByID(ctx, notice.ID)
		require.NoError(t, err)
		assert.Len(t, got.Tags, 2)
		require.Len(t, got.Groups, 1)
		assert.Equal(t, "club", got.Groups[0].Name)
		require.Len(t, got.InReplyTo, 1)
		assert.Equal(t, earlier.ID, got.InReplyTo[0].ID)
	})
}

// seedVisibilityMesh builds the fixture used by the timeline tests: a viewer,
// a user they follow, a stranger, one closed group the viewer belongs to and
// one they don't.
type visibilityMesh struct {
	viewer, followed, stranger *models.User
	inGroup, outGroup          models.Group
	device                     *models.Device
}

func seedVisibilityMesh(t *testing.T) visibilityMesh {
	t.Helper()
	resetTables(t)
	users := NewUserRepository(testDB)
	ctx := context.Background()

	m := visibilityMesh{
		viewer:   makeUser(t, "vw"),
		followed: makeUser(t, "fd"),
		stranger: makeUser(t, "st"),
	}
	require.NoError(t, users.Create(ctx, m.viewer))
	require.NoError(t, users.Create(ctx, m.followed))
	require.NoError(t, users.Create(ctx, m.stranger))
	m.device = makeDevice(t)

	_, err := NewRelationshipRepository(testDB).CreateFollow(ctx, m.viewer.ID, m.followed.ID)
	require.NoError(t, err)

	m.inGroup = models.Group{Name: "ingroup", IsClosed: true, OwnerID: m.stranger.ID}
	m.outGroup = models.Group{Name: "outgroup", IsClosed: true, OwnerID: m.stranger.ID}
	require.NoError(t, testDB.Create(&m.inGroup).Error)
	require.NoError(t, testDB.Create(&m.outGroup).Error)
	_, err = NewGroupRepository(testDB).AddMember(ctx, m.inGroup.ID, m.viewer.ID)
	require.NoError(t, err)

	return m
}

func (m visibilityMesh) post(t *testing.T, authorID uint, text string, at time.Time, restricted bool, groups ...models.Group) *models.Notice {
	t.Helper()
	n := &models.Notice{
		Posted:       at,
		AuthorID:     authorID,
		Text:         text,
		ViaID:        m.device.ID,
		IsRestricted: restricted,
	}
	require.NoError(t, NewNoticeRepository(testDB).Commit(context.Background(), n, nil, groups, nil))
	return n
}

func TestNoticeRepository_Timeline(t *testing.T) {
	m := seedVisibilityMesh(t)
	repo := NewNoticeRepository(testDB)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	own := m.post(t, m.viewer.ID, "own", base.Add(1*time.Minute), false)
	byFollowed := m.post(t, m.followed.ID, "followed", base.Add(2*time.Minute), false)
	byStranger := m.post(t, m.stranger.ID, "stranger", base.Add(3*time.Minute), false)
	inMemberGroup := m.post(t, m.stranger.ID, "closed in", base.Add(4*time.Minute), true, m.inGroup)
	inOtherGroup := m.post(t, m.followed.ID, "closed out", base.Add(5*time.Minute), true, m.outGroup)

	// A stranger replying to the viewer shows up.
	reply := &models.Notice{Posted: base.Add(6 * time.Minute), AuthorID: m.stranger.ID, Text: "@viewer hi", ViaID: m.device.ID}
	require.NoError(t, repo.Commit(ctx, reply, nil, nil, []models.Notice{*own}))

	notices, err := repo.Timeline(ctx, m.viewer.ID, 50, 0)
	require.NoError(t, err)

	ids := make([]uint, len(notices))
	for i, n := range notices {
		ids[i] = n.ID
	}

	assert.Contains(t, ids, own.ID, "own notice")
	assert.Contains(t, ids, byFollowed.ID, "followed author")
	assert.Contains(t, ids, reply.ID, "reply to viewer")
	assert.Contains(t, ids, inMemberGroup.ID, "restricted, viewer is member")
	assert.NotContains(t, ids, byStranger.ID, "stranger, no edge")
	assert.NotContains(t, ids, inOtherGroup.ID, "restricted, viewer not member, even though author is followed")

	// Newest first.
	require.Len(t, notices, 4)
	assert.Equal(t, reply.ID, notices[0].ID)
	assert.Equal(t, inMemberGroup.ID, notices[1].ID)
	assert.Equal(t, byFollowed.ID, notices[2].ID)
	assert.Equal(t, own.ID, notices[3].ID)
}

func TestNoticeRepository_Public(t *testing.T) {
	m := seedVisibilityMesh(t)
	repo := NewNoticeRepository(testDB)
	base := time.Now().Add(-time.Hour)

	open := m.post(t, m.stranger.ID, "open", base.Add(1*time.Minute), false)
	restricted := m.post(t, m.stranger.ID, "hidden", base.Add(2*time.Minute), true, m.inGroup)

	notices, err := repo.Public(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, open.ID, notices[0].ID)
	_ = restricted
}

func TestNoticeRepository_ForTagExcludesRestricted(t *testing.T) {
	m := seedVisibilityMesh(t)
	repo := NewNoticeRepository(testDB)
	ctx := context.Background()

	tag := models.Tag{Name: "topic"}
	require.NoError(t, testDB.Create(&tag).Error)

	open := &models.Notice{Posted: time.Now(), AuthorID: m.stranger.ID, Text: "#topic open", ViaID: m.device.ID}
	require.NoError(t, repo.Commit(ctx, open, []models.Tag{tag}, nil, nil))

	hidden := &models.Notice{Posted: time.Now(), AuthorID: m.stranger.ID, Text: "#topic !ingroup", ViaID: m.device.ID, IsRestricted: true}
	require.NoError(t, repo.Commit(ctx, hidden, []models.Tag{tag}, []models.Group{m.inGroup}, nil))

	notices, err := repo.ForTag(ctx, tag.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, open.ID, notices[0].ID)
}

func TestNoticeRepository_ForAuthor(t *testing.T) {
	m := seedVisibilityMesh(t)
	repo := NewNoticeRepository(testDB)
	base := time.Now().Add(-time.Hour)

	open := m.post(t, m.followed.ID, "open", base.Add(1*time.Minute), false)
	restricted := m.post(t, m.followed.ID, "members only", base.Add(2*time.Minute), true, m.outGroup)

	// The author's own view carries the restricted notice.
	notices, err := repo.ForAuthor(context.Background(), m.followed.ID, true, 50, 0)
	require.NoError(t, err)
	require.Len(t, notices, 2)
	assert.Equal(t, restricted.ID, notices[0].ID)
	assert.Equal(t, open.ID, notices[1].ID)

	// Everyone else only gets the unrestricted subset.
	notices, err = repo.ForAuthor(context.Background(), m.followed.ID, false, 50, 0)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, open.ID, notices[0].ID)
}

func TestNoticeRepository_Replies(t *testing.T) {
	m := seedVisibilityMesh(t)
	repo := NewNoticeRepository(testDB)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	root := m.post(t, m.viewer.ID, "root", base, false)
	reply := &models.Notice{Posted: base.Add(time.Second), AuthorID: m.followed.ID, Text: "@vw yes", ViaID: m.device.ID}
	require.NoError(t, repo.Commit(ctx, reply, nil, nil, []models.Notice{*root}))

	hidden := &models.Notice{
		Posted:       base.Add(2 * time.Second),
		AuthorID:     m.stranger.ID,
		Text:         "@vw !ingroup",
		ViaID:        m.device.ID,
		IsRestricted: true,
	}
	require.NoError(t, repo.Commit(ctx, hidden, nil, []models.Group{m.inGroup}, []models.Notice{*root}))

	t.Run("anonymous sees only open replies", func(t *testing.T) {
		notices, err := repo.Replies(ctx, root.ID, 0, 50, 0)
		require.NoError(t, err)
		require.Len(t, notices, 1)
		assert.Equal(t, reply.ID, notices[0].ID)
	})

	t.Run("group member sees the restricted reply", func(t *testing.T) {
		notices, err := repo.Replies(ctx, root.ID, m.viewer.ID, 50, 0)
		require.NoError(t, err)
		require.Len(t, notices, 2)
		assert.Equal(t, hidden.ID, notices[0].ID)
		assert.Equal(t, reply.ID, notices[1].ID)
	})

	t.Run("author sees their own restricted reply", func(t *testing.T) {
		notices, err := repo.Replies(ctx, root.ID, m.stranger.ID, 50, 0)
		require.NoError(t, err)
		require.Len(t, notices, 2)
	})

	t.Run("non-member outsider does not", func(t *testing.T) {
		notices, err := repo.Replies(ctx, root.ID, m.followed.ID, 50, 0)
		require.NoError(t, err)
		require.Len(t, notices, 1)
		assert.Equal(t, reply.ID, notices[0].ID)
	})
}
