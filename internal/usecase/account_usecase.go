package usecase

import (
	"context"
	"regexp"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

const minPasswordLength = 6

type RegisterRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type AccountUseCase interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.ProfileSnapshot, error)
	Register(ctx context.Context, req RegisterRequest) (*domain.ProfileSnapshot, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*domain.ProfileSnapshot, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.ProfileSnapshot, error)
	AddAddress(ctx context.Context, input domain.AddressInput) ([]domain.SavedAddress, error)
	EditAddress(ctx context.Context, addressID string, input domain.AddressInput) ([]domain.SavedAddress, error)
	DeleteAddress(ctx context.Context, addressID string) ([]domain.SavedAddress, error)
	SubmitContact(ctx context.Context, msg domain.ContactMessage) error
}

type accountUseCase struct {
	session  SessionUseCase
	auth     domain.AuthService
	profiles domain.ProfileService
	contact  domain.ContactService
	log      *logrus.Logger
}

func NewAccountUseCase(
	session SessionUseCase,
	auth domain.AuthService,
	profiles domain.ProfileService,
	contact domain.ContactService,
	logger *logrus.Logger,
) AccountUseCase {
	return &accountUseCase{
		session:  session,
		auth:     auth,
		profiles: profiles,
		contact:  contact,
		log:      logger,
	}
}

func (uc *accountUseCase) Login(ctx context.Context, creds domain.Credentials) (*domain.ProfileSnapshot, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, domain.NewValidationError("email", "Please enter email and password")
	}

	result, err := uc.auth.Login(ctx, creds)
	if err != nil {
		uc.log.Warnf("Use Case: Login failed for %s: %v", creds.Email, err)
		return nil, err
	}
	if err := uc.session.Establish(ctx, result.Token, result.User); err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: User %s logged in", result.User.Email)
	return &result.User, nil
}

func validateRegistration(req RegisterRequest) error {
	switch {
	case strings.TrimSpace(req.FullName) == "":
		return domain.NewValidationError("fullName", "Full name is required")
	case !emailPattern.MatchString(req.Email):
		return domain.NewValidationError("email", "Email is invalid")
	case len(req.Password) < minPasswordLength:
		return domain.NewValidationError("password", "Password must be at least 6 characters")
	case req.Password != req.ConfirmPassword:
		return domain.NewValidationError("confirmPassword", "Passwords do not match")
	}
	return nil
}

func (uc *accountUseCase) Register(ctx context.Context, req RegisterRequest) (*domain.ProfileSnapshot, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRegistration(req); err != nil {
		uc.log.Warnf("Use Case: Registration rejected: %v", err)
		return nil, err
	}

	result, err := uc.auth.Register(ctx, domain.Registration{
		FullName: strings.TrimSpace(req.FullName),
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		uc.log.Warnf("Use Case: Registration failed for %s: %v", req.Email, err)
		return nil, err
	}
	if err := uc.session.Establish(ctx, result.Token, result.User); err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: User %s registered", result.User.Email)
	return &result.User, nil
}

func (uc *accountUseCase) Logout(ctx context.Context) error {
	return uc.session.Revoke(ctx)
}

// revokeIfRejected drops a session the backend no longer accepts.
func (uc *accountUseCase) revokeIfRejected(ctx context.Context, err error) {
	if domain.RemoteCode(err) != codes.Unauthenticated {
		return
	}
	uc.log.Warn("Use Case: Backend rejected the session token, revoking session")
	if rerr := uc.session.Revoke(ctx); rerr != nil {
		uc.log.Errorf("Use Case: Failed to revoke rejected session: %v", rerr)
	}
}

func (uc *accountUseCase) requireSession(ctx context.Context) error {
	if !uc.session.IsActive(ctx) {
		return domain.ErrAuthRequired
	}
	return nil
}

func (uc *accountUseCase) Profile(ctx context.Context) (*domain.ProfileSnapshot, error) {
	if err := uc.requireSession(ctx); err != nil {
		return nil, err
	}
	profile, err := uc.profiles.GetProfile(ctx)
	if err != nil {
		uc.revokeIfRejected(ctx, err)
		return nil, err
	}
	if err := uc.session.RefreshProfile(ctx, *profile); err != nil {
		uc.log.Warnf("Use Case: Could not refresh cached profile: %v", err)
	}
	return profile, nil
}

func (uc *accountUseCase) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.ProfileSnapshot, error) {
	if err := uc.requireSession(ctx); err != nil {
		return nil, err
	}
	update.FullName = strings.TrimSpace(update.FullName)
	if update.FullName == "" {
		return nil, domain.NewValidationError("fullName", "Full name is required")
	}

	profile, err := uc.profiles.UpdateProfile(ctx, update)
	if err != nil {
		uc.revokeIfRejected(ctx, err)
		return nil, err
	}
	if err := uc.session.RefreshProfile(ctx, *profile); err != nil {
		uc.log.Warnf("Use Case: Could not refresh cached profile: %v", err)
	}
	uc.log.Infof("Use Case: Profile %s updated", profile.ID)
	return profile, nil
}

func validateAddress(input domain.AddressInput) error {
	required := []struct {
		field string
		value string
	}{
		{"street", input.Street},
		{"city", input.City},
		{"pinCode", input.PinCode},
		{"phone", input.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return domain.NewValidationError(f.field, "Please fill in all address fields")
		}
	}
	return nil
}

// storeAddresses makes the cached snapshot follow the backend's address list.
func (uc *accountUseCase) storeAddresses(ctx context.Context, addresses []domain.SavedAddress) {
	user := uc.session.CurrentUser(ctx)
	if user == nil {
		return
	}
	user.Addresses = addresses
	if err := uc.session.RefreshProfile(ctx, *user); err != nil {
		uc.log.Warnf("Use Case: Could not refresh cached addresses: %v", err)
	}
}

func (uc *accountUseCase) AddAddress(ctx context.Context, input domain.AddressInput) ([]domain.SavedAddress, error) {
	if err := uc.requireSession(ctx); err != nil {
		return nil, err
	}
	if err := validateAddress(input); err != nil {
		return nil, err
	}
	if input.Label == "" {
		input.Label = "home"
	}

	addresses, err := uc.profiles.AddAddress(ctx, input)
	if err != nil {
		uc.revokeIfRejected(ctx, err)
		return nil, err
	}
	uc.storeAddresses(ctx, addresses)
	uc.log.Infof("Use Case: Address added, %d saved", len(addresses))
	return addresses, nil
}

func (uc *accountUseCase) EditAddress(ctx context.Context, addressID string, input domain.AddressInput) ([]domain.SavedAddress, error) {
	if err := uc.requireSession(ctx); err != nil {
		return nil, err
	}
	if addressID == "" {
		return nil, domain.NewValidationError("id", "address id is required")
	}
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	addresses, err := uc.profiles.EditAddress(ctx, addressID, input)
	if err != nil {
		uc.revokeIfRejected(ctx, err)
		return nil, err
	}
	uc.storeAddresses(ctx, addresses)
	uc.log.Infof("Use Case: Address %s updated", addressID)
	return addresses, nil
}

func (uc *accountUseCase) DeleteAddress(ctx context.Context, addressID string) ([]domain.SavedAddress, error) {
	if err := uc.requireSession(ctx); err != nil {
		return nil, err
	}
	if addressID == "" {
		return nil, domain.NewValidationError("id", "address id is required")
	}

	addresses, err := uc.profiles.DeleteAddress(ctx, addressID)
	if err != nil {
		uc.revokeIfRejected(ctx, err)
		return nil, err
	}
	uc.storeAddresses(ctx, addresses)
	uc.log.Infof("Use Case: Address %s deleted", addressID)
	return addresses, nil
}

func (uc *accountUseCase) SubmitContact(ctx context.Context, msg domain.ContactMessage) error {
	switch {
	case strings.TrimSpace(msg.Name) == "":
		return domain.NewValidationError("name", "Name is required")
	case !emailPattern.MatchString(msg.Email):
		return domain.NewValidationError("email", "Email is invalid")
	case strings.TrimSpace(msg.Message) == "":
		return domain.NewValidationError("message", "Message is required")
	}

	if err := uc.contact.SubmitContact(ctx, msg); err != nil {
		uc.log.Errorf("Use Case: Contact message from %s failed: %v", msg.Email, err)
		return err
	}
	uc.log.Infof("Use Case: Contact message from %s sent", msg.Email)
	return nil
}
