package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSigner() *TokenSigner {
	return NewTokenSigner("super-secret", "flyagain-login", time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.Mint(42, "sess-1", "neo")
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "flyagain-login", claims.Issuer)
	require.Equal(t, "sess-1", claims.SessionID)
	require.Equal(t, "neo", claims.Username)

	accountID, err := claims.AccountID()
	require.NoError(t, err)
	require.Equal(t, int64(42), accountID)
}

func TestTokenRejectsBitFlipInSignature(t *testing.T) {
	signer := newTestSigner()
	token, err := signer.Mint(1, "sess-1", "neo")
	require.NoError(t, err)

	flipped := flipLastChar(token)
	_, err = signer.Verify(flipped)
	require.Error(t, err)
}

func TestTokenRejectsBitFlipInPayload(t *testing.T) {
	signer := newTestSigner()
	token, err := signer.Mint(1, "sess-1", "neo")
	require.NoError(t, err)

	dot := strings.IndexByte(token, '.')
	require.Greater(t, dot, 0)
	tampered := flipLastChar(token[:dot]) + token[dot:]

	_, err = signer.Verify(tampered)
	require.Error(t, err)
}

func TestTokenRejectsWrongIssuer(t *testing.T) {
	minter := NewTokenSigner("super-secret", "other-issuer", time.Hour)
	token, err := minter.Mint(1, "sess-1", "neo")
	require.NoError(t, err)

	verifier := newTestSigner()
	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	minter := NewTokenSigner("other-secret", "flyagain-login", time.Hour)
	token, err := minter.Mint(1, "sess-1", "neo")
	require.NoError(t, err)

	verifier := newTestSigner()
	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestTokenRejectsExpiredToken(t *testing.T) {
	signer := NewTokenSigner("super-secret", "flyagain-login", -time.Second)
	token, err := signer.Mint(1, "sess-1", "neo")
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
}

func TestTokenRejectsMissingSidClaim(t *testing.T) {
	signer := newTestSigner()
	token, err := signer.sign(Claims{
		Issuer:    signer.issuer,
		Subject:   "1",
		Username:  "neo",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
}

func TestTokenRejectsNonNumericSubject(t *testing.T) {
	signer := newTestSigner()
	token, err := signer.sign(Claims{
		Issuer:    signer.issuer,
		Subject:   "not-a-number",
		SessionID: "sess-1",
		Username:  "neo",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
}

func TestTokenRejectsMalformedToken(t *testing.T) {
	signer := newTestSigner()
	_, err := signer.Verify("not-a-valid-token")
	require.Error(t, err)
}

func flipLastChar(s string) string {
	if len(s) == 0 {
		return s
	}
	b := []byte(s)
	last := b[len(b)-1]
	if last == 'a' {
		b[len(b)-1] = 'b'
	} else {
		b[len(b)-1] = 'a'
	}
	return string(b)
}
