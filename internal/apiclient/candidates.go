package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jonathan/hr-console/internal/types"
)

const (
	candidatesPath      = "/api/candidate-resumes"
	candidateSearchPath = "/api/candidate-resumes/search"
	candidateItemRoute  = "/api/candidate-resumes/:id"
)

// ListCandidates fetches one page of candidates. status is the API label to
// filter on; an empty status requests every candidate.
func (c *Client) ListCandidates(ctx context.Context, page, limit int, status string) (*types.CandidatePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if status != "" {
		query.Set("status", status)
	}

	resp, err := c.do(ctx, http.MethodGet, candidatesPath, candidatesPath, query, nil)
	if err != nil {
		return nil, err
	}
	var out types.CandidatePage
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, malformed(http.MethodGet, c.urlFor(candidatesPath, query), resp.status, err)
	}
	return &out, nil
}

// SearchCandidates looks candidates up by email.
func (c *Client) SearchCandidates(ctx context.Context, email string) ([]types.Candidate, error) {
	var out []types.Candidate
	payload := map[string]string{"email": email}
	if err := c.doJSON(ctx, http.MethodPost, candidateSearchPath, candidateSearchPath, nil, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCandidate writes a candidate's status and review.
func (c *Client) UpdateCandidate(ctx context.Context, id string, update types.CandidateUpdate) error {
	return c.doJSON(ctx, http.MethodPut, candidateItemRoute, candidatesPath+"/"+url.PathEscape(id), nil, update, nil)
}

// DeleteCandidate deletes a candidate. A server refusal reported as
// {success: false, message} comes back as a result, not an error, whatever
// the HTTP status.
func (c *Client) DeleteCandidate(ctx context.Context, id string) (*types.DeleteResult, error) {
	path := candidatesPath + "/" + url.PathEscape(id)
	in := call{method: http.MethodDelete, endpoint: candidateItemRoute, path: path}
	resp, err := c.send(ctx, in)
	if err != nil {
		return nil, err
	}

	var out types.DeleteResult
	decodeErr := json.Unmarshal(resp.body, &out)
	if !resp.ok() {
		if decodeErr == nil && out.Message != "" {
			out.Success = false
			return &out, nil
		}
		return nil, statusError(in, c.urlFor(path, nil), resp)
	}
	if decodeErr != nil {
		return nil, malformed(http.MethodDelete, c.urlFor(path, nil), resp.status, decodeErr)
	}
	return &out, nil
}
