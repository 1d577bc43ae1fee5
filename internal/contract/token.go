package contract

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hlefebvre/coliving-backend/config"
)

var ErrInvalidToken = errors.New("invalid or expired signing token")

// SigningClaims identifies one signer of one contract. The JTI makes the
// token single use.
type SigningClaims struct {
	ContractID  uint   `json:"contract_id"`
	SignerName  string `json:"signer_name"`
	SignerEmail string `json:"signer_email"`
	SignerRole  string `json:"signer_role"`
	JTI         string `json:"jti"`
}

// GenerateSigningToken mints a short-lived signed link token for one signer.
func GenerateSigningToken(cfg *config.Config, contractID uint, signerName, signerEmail, signerRole string) (string, error) {
	claims := jwt.MapClaims{
		"contract_id":  contractID,
		"signer_name":  signerName,
		"signer_email": signerEmail,
		"signer_role":  signerRole,
		"jti":          uuid.NewString(),
		"exp":          time.Now().Add(time.Duration(cfg.ContractSignTTLHours) * time.Hour).Unix(),
		"iat":          time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.ContractSignSecret))
}

// VerifySigningToken checks the token signature and expiry before trusting
// any of its claims.
func VerifySigningToken(cfg *config.Config, tokenStr string) (*SigningClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.ContractSignSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	contractID, ok := claims["contract_id"].(float64)
	if !ok || contractID < 1 {
		return nil, ErrInvalidToken
	}
	email, _ := claims["signer_email"].(string)
	if email == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["signer_name"].(string)
	role, _ := claims["signer_role"].(string)
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, ErrInvalidToken
	}

	return &SigningClaims{
		ContractID:  uint(contractID),
		SignerName:  name,
		SignerEmail: email,
		SignerRole:  role,
		JTI:         jti,
	}, nil
}
