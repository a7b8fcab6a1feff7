/**
* Name: 			profiles.go
* Description: 		PostgREST "profiles" 테이블 조회/수정
* Workflow: 		프로필 조회, 초기 프로필 upsert, 설정 변경(PATCH)
 */
package supabase

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"SupabaseAuthPortal/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// GetProfile은 user_id로 단일 프로필 행을 조회한다.
func (c *Client) GetProfile(userID string) (*models.Profile, error) {
	endpoint := c.baseURL + "/rest/v1/profiles?select=*&user_id=eq." + url.QueryEscape(userID)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var rows []models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrProfileNotFound
	}
	return &rows[0], nil
}

// InsertProfile은 초기 프로필 행을 넣는다.
// on_conflict=user_id + ignore-duplicates로 동시 첫 방문 경쟁을 스토리지 계층에서 차단.
func (c *Client) InsertProfile(profile models.Profile) error {
	reqBody, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/rest/v1/profiles?on_conflict=user_id"
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return err
	}
	c.setHeaders(req, c.apiKey)
	req.Header.Set("Prefer", "resolution=ignore-duplicates")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return nil
}

// UpdateProfile은 nil이 아닌 필드만 PATCH한다. 마지막 쓰기가 이긴다.
func (c *Client) UpdateProfile(userID string, settings models.Settings) (*models.Profile, error) {
	reqBody, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/rest/v1/profiles?user_id=eq." + url.QueryEscape(userID)
	req, err := http.NewRequest(http.MethodPatch, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, c.apiKey)
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}

	var rows []models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrProfileNotFound
	}
	return &rows[0], nil
}
