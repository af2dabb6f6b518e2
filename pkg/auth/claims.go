package auth

import "github.com/golang-jwt/jwt/v5"

// OperatorPayload captures the data available when minting a back-office token.
type OperatorPayload struct {
	OperatorID string
	Name       string
	JTI        string
}

// OperatorClaims is the JWT shape accepted on back-office routes.
type OperatorClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// OperatorID returns the subject claim.
func (c *OperatorClaims) OperatorID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
