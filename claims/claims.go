package claims

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeFailedErr indicates that an access token was present but its payload
// segment could not be decoded.
var DecodeFailedErr = errors.New("failed to decode access token payload")

// Placeholder values returned when the token payload omits a profile claim.
// These literals are part of the observable contract and end up in user-facing
// output unchanged.
const (
	NoFirstName   = "(no first name)"
	NoLastName    = "(no last name)"
	NoDisplayName = "(no display name)"
)

// UserClaims holds the identity attributes extracted from an access token.
type UserClaims struct {
	UserID        string `json:"userId"`
	PrincipalName string `json:"principalName"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	DisplayName   string `json:"displayName"`
}

// Decode extracts user claims from the payload segment of an access token.
// The signature is not verified; the token was issued for the protected
// resource and is opaque to this service apart from its claims.
//
// An empty token is not an error: it returns (nil, nil) and callers must treat
// a nil result as "not yet authenticated".
func Decode(accessToken string) (*UserClaims, error) {
	if accessToken == "" {
		return nil, nil
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, mapClaims); err != nil {
		return nil, fmt.Errorf("%w: %v", DecodeFailedErr, err)
	}

	return &UserClaims{
		UserID:        stringClaim(mapClaims, "oid", ""),
		PrincipalName: stringClaim(mapClaims, "upn", stringClaim(mapClaims, "unique_name", "")),
		FirstName:     stringClaim(mapClaims, "given_name", NoFirstName),
		LastName:      stringClaim(mapClaims, "family_name", NoLastName),
		DisplayName:   stringClaim(mapClaims, "name", NoDisplayName),
	}, nil
}

func stringClaim(mapClaims jwt.MapClaims, key, fallback string) string {
	if value, ok := mapClaims[key].(string); ok && value != "" {
		return value
	}
	return fallback
}
