package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/maintkeeper/internal/client/client"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		lang Language
		err  error
		want string
	}{
		{"nil", English, nil, ""},
		{"expired before auth required", English, fmt.Errorf("load: %w", common.ErrSessionExpired), "Your session has expired. Please sign in again."},
		{"auth required", Slovak, common.ErrAuthenticationRequired, "Pre pokračovanie sa prihláste."},
		{"sku before conflict", English, fmt.Errorf("%w: BRG-5021", common.ErrSKUExists), "A spare part with this SKU already exists."},
		{"api conflict", English, &client.APIError{Status: 409, Code: "23505"}, "The record conflicts with existing data."},
		{"api 404", English, &client.APIError{Status: 404}, "The record was not found."},
		{"api 500", Slovak, &client.APIError{Status: 500}, "Server požiadavku odmietol."},
		{"validation", German, common.ErrValidation, "Bitte prüfen Sie die eingegebenen Werte."},
		{"unknown language", Language("fr"), common.ErrUnavailable, "The server is unreachable. Showing locally stored data."},
		{"other", English, errors.New("disk full"), "Something went wrong."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.lang, tt.err))
		})
	}
}

func TestEveryLanguageCoversEveryMessage(t *testing.T) {
	for lang, table := range messages {
		for k := msgSessionExpired; k <= msgGeneric; k++ {
			assert.NotEmpty(t, table[k], "language %s, key %d", lang, k)
		}
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	repos, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	p := NewPreferences(repos.Metadata)

	l, err := p.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, English, l)

	require.NoError(t, p.SetLanguage(ctx, Slovak))
	l, err = p.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, Slovak, l)

	require.ErrorIs(t, p.SetLanguage(ctx, "xx"), common.ErrValidation)

	require.NoError(t, repos.Metadata.Set(ctx, common.MetadataKeyLanguage, []byte("klingon")))
	l, err = p.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, English, l)
}
