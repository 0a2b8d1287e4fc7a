package service

import (
	"strings"
	"testing"

	apperrors "mytickets/internal/errors"
	"mytickets/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Create(t *testing.T) {
	f := newFixture(t)

	user, err := f.services.Users.Create(ctx(), models.UserInput{Email: "Jane@Example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Jane@Example.com", user.Email)

	stored, ok := f.store.User(user.ID)
	require.True(t, ok)
	assert.NotEqual(t, "s3cret!", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret!")))

	assert.Equal(t, []string{models.SubjectUserCreated}, f.publisher.Subjects())
}

func TestUserService_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Users.Create(ctx(), models.UserInput{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.services.Users.Create(ctx(), models.UserInput{Email: "a@b.co", Password: "secret2"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
}

func TestUserService_PasswordTooLong(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Users.Create(ctx(), models.UserInput{Email: "a@b.co", Password: strings.Repeat("x", 73)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayload)
}
