package auth

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/fejiro0/gomart/internal/http/ban"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AuthService registers vendors and logs them in.
type AuthService struct {
	vendors repo.VendorRepository
	strikes ban.Strikes
	issuer  *Issuer
	cost    int
	log     *zap.Logger
}

func NewAuthService(vendors repo.VendorRepository, strikes ban.Strikes, issuer *Issuer, log *zap.Logger) *AuthService {
	return &AuthService{
		vendors: vendors,
		strikes: strikes,
		issuer:  issuer,
		cost:    bcrypt.DefaultCost,
		log:     log,
	}
}

// WithCost overrides the bcrypt cost.
func (a *AuthService) WithCost(cost int) *AuthService {
	a.cost = cost
	return a
}

func (a *AuthService) Register(ctx context.Context, email, storeName, password string) (models.Vendor, string, error) {
	const op = "AuthService.Register"

	email, storeName = strings.TrimSpace(email), strings.TrimSpace(storeName)
	if email == "" || storeName == "" || password == "" {
		return models.Vendor{}, "", e.ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Vendor{}, "", e.ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return models.Vendor{}, "", e.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return models.Vendor{}, "", e.Wrap(op, err)
	}

	v, err := a.vendors.Create(ctx, models.Vendor{
		Email:        email,
		StoreName:    storeName,
		PasswordHash: string(hash),
		IsActive:     true,
	})
	if err != nil {
		return models.Vendor{}, "", e.Wrap(op, err)
	}

	token, err := a.issuer.GenerateToken(v)
	if err != nil {
		return models.Vendor{}, "", e.Wrap(op, err)
	}

	a.log.Info("vendor registered", zap.Int64("vendor_id", v.ID), zap.String("store", v.StoreName))
	return v, token, nil
}

// Login checks identifier (email or store name) and password. Unknown
// identifiers and wrong passwords fail the same way and both count toward
// the lockout.
func (a *AuthService) Login(ctx context.Context, identifier, password string) (string, error) {
	const op = "AuthService.Login"

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", e.ErrMissingFields
	}

	v, err := a.vendors.GetByIdentifier(ctx, identifier)
	found := err == nil
	if err != nil && !errors.Is(err, e.ErrVendorNotFound) {
		return "", e.Wrap(op, err)
	}
	key := strikeKey(v, found, identifier)

	banned, err := a.strikes.Banned(ctx, key)
	if err != nil {
		return "", e.Wrap(op, err)
	}
	if banned {
		return "", e.ErrTooManyAttempts
	}

	if !found || bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(password)) != nil {
		n, serr := a.strikes.Strike(ctx, key)
		if serr != nil {
			a.log.Warn("failed to record login strike", zap.Error(serr))
		}
		a.log.Info("failed vendor login", zap.String("identifier", identifier), zap.Int("strikes", n))
		return "", e.ErrInvalidCredentials
	}

	if !v.IsActive {
		return "", e.ErrVendorInactive
	}

	if err := a.strikes.Reset(ctx, key); err != nil {
		a.log.Warn("failed to reset login strikes", zap.Error(err))
	}

	token, err := a.issuer.GenerateToken(v)
	if err != nil {
		return "", e.Wrap(op, err)
	}
	return token, nil
}

// strikeKey counts failures per vendor, so the email and the store name share
// one budget. Identifiers that match no vendor are counted on their own.
func strikeKey(v models.Vendor, found bool, identifier string) string {
	if found {
		return "vendor:" + strconv.FormatInt(v.ID, 10)
	}
	return "identifier:" + strings.ToLower(identifier)
}

// Authenticate resolves a bearer token to an active vendor id.
func (a *AuthService) Authenticate(ctx context.Context, token string) (int64, error) {
	id, err := a.issuer.ParseToken(token)
	if err != nil {
		return 0, err
	}

	v, err := a.vendors.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !v.IsActive {
		return 0, e.ErrVendorInactive
	}
	return v.ID, nil
}
