package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNoticeFlow(t *testing.T) {
	s, db := newTestServer(t)
	author := seedUser(t, db, "poster")
	seedDevice(t, db, "web")
	mentioned := seedUser(t, db, "friend")
	dev := seedDevice(t, db, "api")
	last := seedNotice(t, db, mentioned.ID, dev.ID, "earlier words")
	require.NoError(t, db.Model(&models.UserInfo{}).
		Where("user_id = ?", mentioned.ID).
		Update("last_notice_id", last.ID).Error)

	require.NoError(t, db.Create(&models.Group{Name: "secrets", IsClosed: true, OwnerID: author.ID}).Error)

	app := newTestApp(author.ID)
	app.Post("/api/notices", s.CreateNotice)

	body := []byte(`{"text":"@friend meet at #dawn !secrets !nothere"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/notices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got models.Notice
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, author.ID, got.AuthorID)
	assert.True(t, got.IsRestricted, "only closed groups attached")
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "dawn", got.Tags[0].Name)
	require.Len(t, got.Groups, 1, "unknown group dropped")
	assert.Equal(t, "secrets", got.Groups[0].Name)
	require.Len(t, got.InReplyTo, 1)
	assert.Equal(t, last.ID, got.InReplyTo[0].ID)

	// The author's last notice pointer moved.
	var info models.UserInfo
	require.NoError(t, db.Where("user_id = ?", author.ID).First(&info).Error)
	require.NotNil(t, info.LastNoticeID)
	assert.Equal(t, got.ID, *info.LastNoticeID)
}

func TestCreateNoticeValidation(t *testing.T) {
	s, db := newTestServer(t)
	author := seedUser(t, db, "poster")
	seedDevice(t, db, "web")

	app := newTestApp(author.ID)
	app.Post("/api/notices", s.CreateNotice)

	t.Run("empty text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/notices", bytes.NewReader([]byte(`{"text":"  "}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown device", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/notices", bytes.NewReader([]byte(`{"text":"hi","via":"fax"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteNoticeOnlyAuthor(t *testing.T) {
	s, db := newTestServer(t)
	author := seedUser(t, db, "author")
	other := seedUser(t, db, "other")
	dev := seedDevice(t, db, "web")
	notice := seedNotice(t, db, author.ID, dev.ID, "mine")

	otherApp := newTestApp(other.ID)
	otherApp.Delete("/api/notices/:id", s.DeleteNotice)

	req := httptest.NewRequest(http.MethodDelete, "/api/notices/1", nil)
	resp, err := otherApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	authorApp := newTestApp(author.ID)
	authorApp.Delete("/api/notices/:id", s.DeleteNotice)
	resp, err = authorApp.Test(httptest.NewRequest(http.MethodDelete, "/api/notices/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	db.Model(&models.Notice{}).Where("id = ?", notice.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetNoticeRestrictedAccess(t *testing.T) {
	s, db := newTestServer(t)
	author := seedUser(t, db, "author")
	member := seedUser(t, db, "member")
	outsider := seedUser(t, db, "outsider")
	dev := seedDevice(t, db, "web")

	vault := models.Group{Name: "vault", IsClosed: true, OwnerID: author.ID}
	require.NoError(t, db.Create(&vault).Error)
	require.NoError(t, db.Create(&models.GroupMember{GroupID: vault.ID, UserID: member.ID}).Error)

	secret := seedNotice(t, db, author.ID, dev.ID, "inside !vault")
	require.NoError(t, db.Model(secret).Update("is_restricted", true).Error)
	require.NoError(t, db.Model(secret).Association("Groups").Append(&vault))

	reply := &models.Notice{Posted: time.Now(), AuthorID: member.ID, Text: "agreed", ViaID: dev.ID, IsRestricted: true}
	require.NoError(t, db.Create(reply).Error)
	require.NoError(t, db.Model(reply).Association("Groups").Append(&vault))
	require.NoError(t, db.Model(reply).Association("InReplyTo").Append(secret))

	register := func(userID uint) *fiber.App {
		app := newTestApp(userID)
		app.Get("/api/notices/:id/replies", s.GetReplies)
		app.Get("/api/notices/:id", s.GetNotice)
		return app
	}
	get := func(app *fiber.App, path string) *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		return resp
	}
	noticeURL := fmt.Sprintf("/api/notices/%d", secret.ID)

	t.Run("anonymous gets not found", func(t *testing.T) {
		app := register(0)
		assert.Equal(t, http.StatusNotFound, get(app, noticeURL).StatusCode)
		assert.Equal(t, http.StatusNotFound, get(app, noticeURL+"/replies").StatusCode)
	})

	t.Run("outsider gets not found", func(t *testing.T) {
		app := register(outsider.ID)
		assert.Equal(t, http.StatusNotFound, get(app, noticeURL).StatusCode)
	})

	t.Run("author reads it", func(t *testing.T) {
		resp := get(register(author.ID), noticeURL)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("group member reads it and its restricted replies", func(t *testing.T) {
		app := register(member.ID)
		assert.Equal(t, http.StatusOK, get(app, noticeURL).StatusCode)

		resp := get(app, noticeURL+"/replies")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got struct {
			Replies []models.Notice `json:"replies"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got.Replies, 1)
		assert.Equal(t, reply.ID, got.Replies[0].ID)
	})

	t.Run("open notice stays public", func(t *testing.T) {
		open := seedNotice(t, db, author.ID, dev.ID, "hello world")
		resp := get(register(0), fmt.Sprintf("/api/notices/%d", open.ID))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestFavoriteEndpoints(t *testing.T) {
	s, db := newTestServer(t)
	user := seedUser(t, db, "fan")
	dev := seedDevice(t, db, "web")
	notice := seedNotice(t, db, user.ID, dev.ID, "nice one")

	app := newTestApp(user.ID)
	app.Post("/api/notices/:id/favorite", s.FavoriteNotice)
	app.Delete("/api/notices/:id/favorite", s.UnfavoriteNotice)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/notices/1/favorite", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Notice
	require.NoError(t, db.First(&got, notice.ID).Error)
	assert.Equal(t, uint(1), got.FavoritedCount)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/notices/1/favorite", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&got, notice.ID).Error)
	assert.Equal(t, uint(0), got.FavoritedCount)
}
