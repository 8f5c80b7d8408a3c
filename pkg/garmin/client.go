// Package garmin talks to Garmin Connect: password login, activity listing
// and per-activity file downloads.
package garmin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/bndxn/secure-app/pkg/types"
)

const (
	defaultAPIBaseURL = "https://connectapi.garmin.com"
	defaultSSOBaseURL = "https://sso.garmin.com/sso"
)

// DownloadFormat selects which file representation Garmin serves for an
// activity.
type DownloadFormat string

const (
	// FormatTCX is the lap-structured Training Center XML export.
	FormatTCX DownloadFormat = "tcx"
	// FormatOriginal is the archived file as recorded by the device,
	// served as a zip.
	FormatOriginal DownloadFormat = "original"
)

// Activity is the platform-native activity record as returned by the
// activity listing endpoint. Only the fields the fetcher needs are mapped.
type Activity struct {
	ActivityID           int64  `json:"activityId"`
	ActivityIDOriginal   int64  `json:"activityIdOriginal"`
	ActivityName         string `json:"activityName"`
	ActivityNameOriginal string `json:"activityNameOriginal"`
	StartTimeLocal       string `json:"startTimeLocal"`
	ActivityType         struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`
	Distance *float64 `json:"distance"` // meters
	Duration *float64 `json:"duration"` // seconds
}

// API is the Garmin Connect surface the fetcher depends on.
type API interface {
	Login(ctx context.Context) error
	ListActivities(ctx context.Context, start, limit int) ([]Activity, error)
	DownloadActivity(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error)
	Logout(ctx context.Context)
}

// Client implements API against the real Garmin Connect endpoints.
type Client struct {
	creds   types.Credentials
	apiBase string
	ssoBase string
	http    *http.Client
}

func NewClient(creds types.Credentials) *Client {
	return &Client{
		creds:   creds,
		apiBase: defaultAPIBaseURL,
		ssoBase: defaultSSOBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Login exchanges the username/password for an OAuth2 bearer token via the
// Garmin SSO endpoint and installs an authenticated HTTP client. Login
// failure is fatal for the fetch cycle; there is no retry here.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{
		"username": {c.creds.Username},
		"password": {c.creds.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ssoBase+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sso request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sso login failed: status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return fmt.Errorf("sso login returned no access token")
	}

	token := &oauth2.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
		Expiry:      time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}
	c.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	return nil
}

// ListActivities returns the platform-native records for the most recent
// activities, in the order Garmin serves them (most recent first).
func (c *Client) ListActivities(ctx context.Context, start, limit int) ([]Activity, error) {
	path := fmt.Sprintf("/activitylist-service/activities/search/activities?start=%d&limit=%d", start, limit)
	resp, err := c.do(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return activities, nil
}

// DownloadActivity fetches one activity file. The download endpoints answer
// with either the raw file bytes or a JSON envelope carrying the bytes in a
// content field; both shapes are resolved here so callers only ever see
// plain bytes.
func (c *Client) DownloadActivity(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
	var path string
	switch format {
	case FormatTCX:
		path = fmt.Sprintf("/download-service/export/tcx/activity/%d", activityID)
	case FormatOriginal:
		path = fmt.Sprintf("/download-service/files/activity/%d", activityID)
	default:
		return nil, fmt.Errorf("unknown download format %q", format)
	}

	resp, err := c.do(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download body: %w", err)
	}
	return resolvePayload(resp.Header.Get("Content-Type"), body)
}

// Logout ends the session. Best-effort: a failed logout never fails a cycle.
func (c *Client) Logout(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/auth-service/logout", nil)
	if err != nil {
		return
	}
	if resp, err := c.http.Do(req); err == nil {
		resp.Body.Close()
	}
}

func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("garmin API error %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

// payloadEnvelope is the content-bearing variant of a download response.
// The content field is base64 in the JSON, which encoding/json decodes into
// bytes directly.
type payloadEnvelope struct {
	Content []byte `json:"content"`
}

// resolvePayload collapses the two download response shapes into plain bytes.
func resolvePayload(contentType string, body []byte) ([]byte, error) {
	if !strings.Contains(contentType, "application/json") {
		if len(body) == 0 {
			return nil, fmt.Errorf("download returned no data")
		}
		return body, nil
	}

	var envelope payloadEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode download envelope: %w", err)
	}
	if len(envelope.Content) == 0 {
		return nil, fmt.Errorf("download envelope carried no content")
	}
	return envelope.Content, nil
}
