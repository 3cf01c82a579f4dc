package firebase

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"restaurant-ordering/internal/domain"
)

// Verifier turns Firebase ID tokens into identities.
type Verifier struct {
	client      *auth.Client
	adminEmails map[string]struct{}
}

func NewVerifier(ctx context.Context, app *firebase.App, adminEmails []string) (*Verifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(e)] = struct{}{}
	}
	return &Verifier{client: client, adminEmails: admins}, nil
}

func (v *Verifier) Verify(ctx context.Context, idToken string) (domain.Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return IdentityFromClaims(tok.UID, tok.Claims, v.adminEmails), nil
}

// IdentityFromClaims reads the standard Firebase claims. A user is an admin
// when their email is configured as one or the token carries admin=true.
func IdentityFromClaims(uid string, claims map[string]interface{}, adminEmails map[string]struct{}) domain.Identity {
	id := domain.Identity{UID: uid}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Phone, _ = claims["phone_number"].(string)
	if _, ok := adminEmails[strings.ToLower(id.Email)]; ok && id.Email != "" {
		id.IsAdmin = true
	}
	if admin, _ := claims["admin"].(bool); admin {
		id.IsAdmin = true
	}
	return id
}
