package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var jwtAlgorithm = jwt.SigningMethodHS256

// PasswordCost is the bcrypt cost used for admin passwords
const PasswordCost = 12

// Secrets holds the signing keys. They are read once at startup, after .env loading.
type Secrets struct {
	JWT    []byte
	Master []byte
}

// SecretsFromEnv reads JWT_SECRET and API_MASTER_SECRET
func SecretsFromEnv() Secrets {
	return Secrets{
		JWT:    []byte(os.Getenv("JWT_SECRET")),
		Master: []byte(os.Getenv("API_MASTER_SECRET")),
	}
}

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user, valid for 24 hours
func (s Secrets) CreateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(s.JWT)
}

// VerifyToken verifies a JWT token
func (s Secrets) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, errors.New("unexpected signing method")
		}
		return s.JWT, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// EnsureAdminExists checks if any admin exists, if not create one from environment variables.
func EnsureAdminExists(db *gorm.DB) error {
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if err := db.Create(&database.MasterUser{Username: username, PasswordHash: hash}).Error; err != nil {
		return err
	}
	log.Printf("Default admin user created: %s", username)
	return nil
}

func (s Secrets) sign(userID string) string {
	h := hmac.New(sha256.New, s.Master)
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func (s Secrets) GenerateHMACKey(userID string) string {
	return userID + "." + s.sign(userID)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its user ID
func (s Secrets) VerifyHMACKey(key string) (string, error) {
	userID, providedSignature, ok := strings.Cut(key, ".")
	if !ok || userID == "" || strings.Contains(providedSignature, ".") {
		return "", errors.New("invalid key format")
	}

	// Use constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(providedSignature), []byte(s.sign(userID))) {
		return "", errors.New("invalid signature")
	}

	return userID, nil
}

// BearerToken strips an optional "Bearer " prefix
func BearerToken(header string) string {
	return strings.TrimPrefix(header, "Bearer ")
}
