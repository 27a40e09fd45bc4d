package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// TOTPEnrollment carries everything needed to finish enrollment in an
// authenticator app: the shared secret, the otpauth URL, and a QR code
// rendered as a PNG data URI.
type TOTPEnrollment struct {
	Secret    string `json:"secret"`
	URL       string `json:"url"`
	QRDataURI string `json:"qr"`
}

func GenerateTOTPSecret(username, issuer string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &TOTPEnrollment{
		Secret:    key.Secret(),
		URL:       key.URL(),
		QRDataURI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

func ValidateTOTPCode(code, secret string) bool {
	return totp.Validate(code, secret)
}

// PendingTOTPClaims is the short-lived token issued between a correct
// password and a correct TOTP code.
type PendingTOTPClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

func GeneratePendingToken(userID int, secret string) (string, error) {
	claims := PendingTOTPClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   totpPendingSubject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidatePendingToken(tokenStr, secret string) (int, error) {
	claims := &PendingTOTPClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid pending token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("pending token is not valid")
	}
	if claims.Subject != totpPendingSubject {
		return 0, fmt.Errorf("token is not a TOTP pending token")
	}
	return claims.UserID, nil
}
