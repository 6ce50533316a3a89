package upstream

import (
	"context"
	"net/http"

	"folio/internal/nominee/models"
	"folio/internal/nominee/service"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

// NomineeClient implements service.NomineeAPI against the backend
// nominee system of record.
type NomineeClient struct {
	*Client
}

var _ service.NomineeAPI = (*NomineeClient)(nil)

// NewNomineeClient creates a nominee client on top of the shared backend client.
func NewNomineeClient(client *Client) *NomineeClient {
	return &NomineeClient{Client: client}
}

type nomineeEnvelope struct {
	Data []models.NomineeDTO `json:"data"`
}

// List fetches the caller's committed nominee declarations.
func (c *NomineeClient) List(ctx context.Context, userID domain.UserID) ([]*models.Nominee, error) {
	var resp nomineeEnvelope
	if err := c.do(ctx, http.MethodGet, "/users/nominees", c.userHeader(userID), nil, &resp); err != nil {
		return nil, err
	}
	nominees, err := models.FromDTOs(resp.Data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "malformed nominee record in response")
	}
	return nominees, nil
}

// Upsert replaces the caller's full nominee set in one request. The step-up
// token rides in a header; the backend re-validates it server side.
func (c *NomineeClient) Upsert(ctx context.Context, userID domain.UserID, token string, batch []*models.Nominee) ([]*models.Nominee, error) {
	headers := c.userHeader(userID)
	headers[headerMFAToken] = token

	req := nomineeEnvelope{Data: models.ToDTOs(batch)}
	var resp nomineeEnvelope
	if err := c.do(ctx, http.MethodPost, "/users/nominees", headers, req, &resp); err != nil {
		return nil, err
	}
	nominees, err := models.FromDTOs(resp.Data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "malformed nominee record in response")
	}
	return nominees, nil
}

// OptOut records the caller's explicit decision not to declare nominees.
func (c *NomineeClient) OptOut(ctx context.Context, userID domain.UserID, token string) error {
	headers := c.userHeader(userID)
	headers[headerMFAToken] = token

	return c.do(ctx, http.MethodPost, "/users/actions/nominee-opt-out", headers, struct{}{}, nil)
}

func (c *NomineeClient) userHeader(userID domain.UserID) map[string]string {
	return map[string]string{"X-User-ID": userID.String()}
}
