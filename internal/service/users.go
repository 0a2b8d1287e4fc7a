package service

import (
	"context"
	"errors"
	"fmt"

	"mytickets/internal/clock"
	apperrors "mytickets/internal/errors"
	"mytickets/internal/metrics"
	"mytickets/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users      UserStore
	publisher  Publisher
	clock      clock.Clock
	bcryptCost int
}

func NewUserService(users UserStore, publisher Publisher, clk clock.Clock, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		publisher:  publisher,
		clock:      clk,
		bcryptCost: bcryptCost,
	}
}

// Create registers a user with a unique email. Only the bcrypt hash of the
// password is stored.
func (s *UserService) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			verr := &apperrors.ValidationError{}
			verr.Add("password", "must be at most 72 bytes")
			return nil, verr
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.UsersCreated.Inc()
	publish(ctx, s.publisher, models.SubjectUserCreated, models.UserCreatedMessage{
		UserID:    user.ID,
		Timestamp: s.clock.Now(),
	})

	return user, nil
}
