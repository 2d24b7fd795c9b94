package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal_ClaimsRoundTrip(t *testing.T) {
	p := Principal{UserID: "u-1", Name: "Ana", Email: "ana@x.com"}
	assert.Equal(t, p, FromClaims(p.Claims()))
}

func TestPrincipal_Owns(t *testing.T) {
	p := Principal{UserID: "u-1"}
	assert.True(t, p.Owns("u-1"))
	assert.False(t, p.Owns("u-2"))
	assert.False(t, Principal{}.Owns(""))
}

func TestFromClaims_IgnoresWrongTypes(t *testing.T) {
	p := FromClaims(map[string]interface{}{ClaimUserID: 42, ClaimName: "Bob"})
	assert.False(t, p.Authenticated())
	assert.Equal(t, "Bob", p.Name)
}
