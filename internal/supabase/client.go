/**
* Name: 			client.go
* Description: 		Supabase 백엔드(GoTrue) 인증 클라이언트
* Workflow: 		회원가입, 로그인, 로그아웃, 비밀번호 재설정, 토큰 검증
 */
package supabase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Supabase 프로젝트 핸들, URL과 API 키 외 상태 없음
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// 인증된 사용자, GoTrue 응답의 일부만 사용
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// 로그인 성공 시 발급되는 세션
type Session struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// SignUp은 새 계정을 생성한다. 이메일 확인 메일 발송은 백엔드가 담당.
func (c *Client) SignUp(email, password string) (*AuthUser, error) {
	var user AuthUser
	if err := c.post("/auth/v1/signup", c.apiKey, credentialsRequest{Email: email, Password: password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignIn은 password grant로 세션 토큰을 발급받는다.
func (c *Client) SignIn(email, password string) (*Session, error) {
	var session Session
	if err := c.post("/auth/v1/token?grant_type=password", c.apiKey, credentialsRequest{Email: email, Password: password}, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, errors.New("backend returned an empty session")
	}
	return &session, nil
}

// SignOut은 해당 토큰의 세션을 무효화한다.
func (c *Client) SignOut(accessToken string) error {
	return c.post("/auth/v1/logout", accessToken, struct{}{}, nil)
}

// ResetPasswordForEmail은 재설정 링크 메일 발송을 요청한다.
func (c *Client) ResetPasswordForEmail(email string) error {
	return c.post("/auth/v1/recover", c.apiKey, map[string]string{"email": email}, nil)
}

// VerifyOTP는 이메일 확인용 일회성 토큰을 검증한다.
// tokenType은 배포 설정에 따라 "signup" 또는 "email".
func (c *Client) VerifyOTP(token, tokenType string) error {
	return c.post("/auth/v1/verify", c.apiKey, verifyRequest{Type: tokenType, Token: token}, nil)
}

// GetUser는 bearer 토큰으로 사용자를 조회한다. 토큰 검증은 전적으로 백엔드 몫.
func (c *Client) GetUser(accessToken string) (*AuthUser, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) post(path, bearer string, body, out interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return err
	}
	c.setHeaders(req, bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setHeaders(req *http.Request, bearer string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
}

// 백엔드 에러 바디를 그대로 노출한다. 구조화된 에러 코드는 사용하지 않음.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.ErrorDescription != "":
			return errors.New(payload.ErrorDescription)
		case payload.Msg != "":
			return errors.New(payload.Msg)
		case payload.Message != "":
			return errors.New(payload.Message)
		}
	}
	return fmt.Errorf("backend request failed with status %s: %s", resp.Status, string(body))
}
