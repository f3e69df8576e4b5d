package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"lifewood/internal/models"
)

// ListApplicants fetches every applicant.
func (c *Client) ListApplicants(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "applicants", nil, nil)
}

// GetApplicant fetches one applicant.
func (c *Client) GetApplicant(ctx context.Context, id uint) (*Response, error) {
	return c.Do(ctx, http.MethodGet, fmt.Sprintf("applicants/%d", id), nil, nil)
}

// CreateApplicant submits a new application. The server answers 201.
func (c *Client) CreateApplicant(ctx context.Context, form *Multipart) (*Response, error) {
	return c.Do(ctx, http.MethodPost, "applicants", form, nil)
}

// UpdateApplicant replaces the editable fields of an applicant.
func (c *Client) UpdateApplicant(ctx context.Context, id uint, in models.ApplicantInput) (*Response, error) {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("applicants/%d", id), in, nil)
}

// UpdateApplicantStatus sets an arbitrary status.
func (c *Client) UpdateApplicantStatus(ctx context.Context, id uint, status string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("applicants/%d/status", id),
		map[string]string{"status": status}, nil)
}

// ApproveApplicant approves an applicant and triggers the approval mail.
func (c *Client) ApproveApplicant(ctx context.Context, id uint) (*Response, error) {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("applicants/%d/approve", id), nil, nil)
}

// DeclineApplicant rejects an applicant and triggers the decline mail.
func (c *Client) DeclineApplicant(ctx context.Context, id uint) (*Response, error) {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("applicants/%d/decline", id), nil, nil)
}

// DeleteApplicant removes an applicant and its resume.
func (c *Client) DeleteApplicant(ctx context.Context, id uint) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("applicants/%d", id), nil, nil)
}

// ListApplicantsByProject fetches the applicants of one project title.
func (c *Client) ListApplicantsByProject(ctx context.Context, project string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "applicants/project/"+url.PathEscape(project), nil, nil)
}

// SearchApplicantsByName matches first or last names.
func (c *Client) SearchApplicantsByName(ctx context.Context, name string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "applicants/search?name="+url.QueryEscape(name), nil, nil)
}

// UploadResume stores or replaces an applicant's resume.
func (c *Client) UploadResume(ctx context.Context, id uint, fileName, contentType string, data []byte) (*Response, error) {
	form := NewMultipart().File("resume", fileName, contentType, data)
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("applicants/%d/resume", id), form, nil)
}

// FetchResumeBlob downloads a resume for inline preview.
func (c *Client) FetchResumeBlob(ctx context.Context, id uint) ([]byte, string, error) {
	resp, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("applicants/%d/resume", id), nil, nil)
	if err != nil {
		return nil, "", err
	}
	return resp.Data, resp.Header.Get("Content-Type"), nil
}

// ResumeDownloadURL is the link that serves a resume as an attachment.
func (c *Client) ResumeDownloadURL(id uint) string {
	return c.URL(fmt.Sprintf("applicants/%d/resume?download=true", id))
}

// ListProjects fetches the project catalog.
func (c *Client) ListProjects(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "projects", nil, nil)
}

// Login exchanges credentials for a token. The token store is not touched.
func (c *Client) Login(ctx context.Context, email, password string) (*Response, error) {
	return c.Do(ctx, http.MethodPost, "admin/login",
		models.LoginRequest{Email: email, Password: password}, nil)
}

// Validate checks the stored token.
func (c *Client) Validate(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "admin/validate", nil, nil)
}

// SignIn logs in and saves the token and admin profile.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	auth, err := Decode[models.AuthResponse](c.Login(ctx, email, password))
	if err != nil {
		return nil, err
	}
	if !auth.Success || auth.Token == "" {
		return nil, fmt.Errorf("login failed: %s", auth.Message)
	}
	if c.tokens != nil {
		if err := c.tokens.Save(ctx, auth.Token, auth.Admin); err != nil {
			return nil, fmt.Errorf("save token: %w", err)
		}
	}
	return &auth, nil
}

// Logout revokes the token on the server and clears the store. The store is
// cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	var callErr error
	if err == nil && token != "" {
		_, callErr = c.Do(ctx, http.MethodPost, "admin/logout", nil, nil)
	}
	if err := c.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return callErr
}
