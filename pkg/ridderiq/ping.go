package ridderiq

import (
	"context"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
)

// TestCredentials checks that the credentials reach an administration by
// listing a single todo. Any failure is returned as a typed error.
func TestCredentials(ctx context.Context, transport Transport, creds Credentials) (*Response, error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}

	record := Record{
		Version:  constants.PingVersion,
		Endpoint: constants.PingEndpoint,
		Method:   MethodGet,
	}

	query, err := Assemble(MethodGet, PageParams{
		Page: intPtr(constants.DefaultPage),
		Size: intPtr(constants.PingPageSize),
	}, "", "")
	if err != nil {
		return nil, err
	}

	descriptor, err := Build(creds, record, query)
	if err != nil {
		return nil, err
	}

	return Call(ctx, transport, descriptor)
}
