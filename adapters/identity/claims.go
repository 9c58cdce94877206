package identity

import "github.com/golang-jwt/jwt/v5"

const audienceAccess = "siwn:access"
const audienceRefresh = "siwn:refresh"

// AccessClaims combines standard claims with the wallet address
type AccessClaims struct {
	jwt.RegisteredClaims
	Address string `json:"addr"`
}

// RefreshClaims are just the standard claims for refresh tokens
type RefreshClaims struct {
	jwt.RegisteredClaims
	Address string `json:"addr"`
}
