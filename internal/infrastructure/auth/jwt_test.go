package auth

import (
	"errors"
	"testing"
	"time"

	"sacco-ledger/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
)

const member = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	tok, err := m.Generate(identity.Identity{UserID: member, Role: identity.RoleStaff})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got, err := m.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.UserID != member || got.Role != identity.RoleStaff {
		t.Fatalf("identity = %+v", got)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other", time.Hour)
	expired := NewJWTManager("secret", -time.Minute)

	good, _ := other.Generate(identity.Identity{UserID: member, Role: identity.RoleMember})
	old, _ := expired.Generate(identity.Identity{UserID: member, Role: identity.RoleMember})
	badRole, _ := m.Generate(identity.Identity{UserID: member, Role: "root"})
	badSub, _ := m.Generate(identity.Identity{UserID: "not-hex", Role: identity.RoleMember})
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: identity.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: member}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"wrong secret", good, ErrInvalidToken},
		{"expired", old, ErrInvalidToken},
		{"unknown role", badRole, ErrInvalidToken},
		{"bad subject", badSub, ErrInvalidToken},
		{"alg none", none, ErrInvalidToken},
		{"garbage", "a.b.c", ErrInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := m.Validate(tc.token); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}
