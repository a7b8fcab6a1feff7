package supabase

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SupabaseAuthPortal/internal/models"
)

func TestGetProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/profiles", r.URL.Path)
		require.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
		json.NewEncoder(w).Encode([]models.Profile{
			{UserID: "user-1", FullName: "Ada", Bio: "hi", Age: 30},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-key")
	profile, err := client.GetProfile("user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FullName)
	assert.Equal(t, 30, profile.Age)
}

func TestGetProfileNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := New(server.URL, "test-key")
	_, err := client.GetProfile("user-1")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

// upsert 요청이 충돌 무시 헤더와 on_conflict 키를 싣는지 확인
func TestInsertProfileUsesIgnoreDuplicates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "user_id", r.URL.Query().Get("on_conflict"))
		require.Equal(t, "resolution=ignore-duplicates", r.Header.Get("Prefer"))

		var row models.Profile
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "New User", row.FullName)
		assert.Equal(t, "This is your bio.", row.Bio)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(server.URL, "test-key")
	err := client.InsertProfile(models.Profile{
		UserID:   "user-1",
		FullName: models.DefaultFullName,
		Bio:      models.DefaultBio,
	})
	require.NoError(t, err)
}

// PATCH 바디에는 설정된 필드만 실린다 (exclude-unset)
func TestUpdateProfilePatchesOnlySetFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var fields map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &fields))
		assert.Equal(t, map[string]interface{}{
			"full_name": "Ada",
			"age":       float64(30),
		}, fields)

		json.NewEncoder(w).Encode([]models.Profile{
			{UserID: "user-1", FullName: "Ada", Age: 30},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-key")
	name := "Ada"
	age := 30
	profile, err := client.UpdateProfile("user-1", models.Settings{FullName: &name, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FullName)
	assert.Equal(t, 30, profile.Age)
}

func TestUpdateProfileNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := New(server.URL, "test-key")
	theme := "dark"
	_, err := client.UpdateProfile("user-1", models.Settings{Theme: &theme})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileErrorSurfacesBackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "permission denied for table profiles"})
	}))
	defer server.Close()

	client := New(server.URL, "test-key")
	_, err := client.GetProfile("user-1")
	require.Error(t, err)
	assert.Equal(t, "permission denied for table profiles", err.Error())
}
