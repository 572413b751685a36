// Package signing issues and verifies the stateless action tokens embedded in
// follow-request emails. A token binds a subject account to an action and is
// verified with a key derived from the configured secret.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/hkdf"
)

type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

func (a Action) Valid() bool {
	return a == ActionAccept || a == ActionReject
}

const (
	issuer  = "follow-api"
	keyInfo = "follow-request-action-token"
)

var (
	ErrEmptySecret   = errors.New("signing: secret must not be empty")
	ErrUnknownAction = errors.New("signing: unknown action")
)

// Claims is the verified content of an action token. Recipient is zero for
// tokens that are not bound to a particular recipient.
type Claims struct {
	Subject   uint
	Recipient uint
	Action    Action
	IssuedAt  time.Time
}

type tokenClaims struct {
	Action    Action `json:"act"`
	Recipient uint   `json:"rcp,omitempty"`
	jwt.StandardClaims
}

type Codec struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewCodec derives the signing key from secret. Tokens expire maxAge after
// issue; a zero maxAge issues tokens without expiry.
func NewCodec(secret []byte, maxAge time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, err
	}

	return &Codec{key: key, maxAge: maxAge, now: time.Now}, nil
}

func (c *Codec) Sign(subjectID uint, action Action) (string, error) {
	return c.SignFor(subjectID, 0, action)
}

// SignFor issues a token that only recipientID may redeem.
func (c *Codec) SignFor(subjectID, recipientID uint, action Action) (string, error) {
	if !action.Valid() {
		return "", ErrUnknownAction
	}

	now := c.now()
	claims := tokenClaims{
		Action:    action,
		Recipient: recipientID,
		StandardClaims: jwt.StandardClaims{
			Subject:  strconv.FormatUint(uint64(subjectID), 10),
			Issuer:   issuer,
			IssuedAt: now.Unix(),
		},
	}
	if c.maxAge > 0 {
		claims.ExpiresAt = now.Add(c.maxAge).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Verify never fails loudly: malformed, tampered, expired or foreign tokens
// all yield ok == false.
func (c *Codec) Verify(token string) (claims Claims, ok bool) {
	defer func() {
		if recover() != nil {
			claims, ok = Claims{}, false
		}
	}()

	var parsed tokenClaims
	parser := jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	t, err := parser.ParseWithClaims(token, &parsed, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil || !t.Valid || !c.canonical(token) {
		return Claims{}, false
	}

	if parsed.Issuer != issuer || !parsed.Action.Valid() {
		return Claims{}, false
	}
	if parsed.ExpiresAt != 0 && c.now().Unix() >= parsed.ExpiresAt {
		return Claims{}, false
	}

	subject, err := strconv.ParseUint(parsed.Subject, 10, 0)
	if err != nil || subject == 0 {
		return Claims{}, false
	}

	return Claims{
		Subject:   uint(subject),
		Recipient: parsed.Recipient,
		Action:    parsed.Action,
		IssuedAt:  time.Unix(parsed.IssuedAt, 0),
	}, true
}

// canonical rejects tokens whose signature segment only decodes to the right
// bytes: base64 tolerates altered padding bits in the final character.
func (c *Codec) canonical(token string) bool {
	i := strings.LastIndex(token, ".")
	if i < 0 {
		return false
	}
	expected, err := jwt.SigningMethodHS256.Sign(token[:i], c.key)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token[i+1:]))
}
