package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/sources"
)

type mockOfferRepository struct {
	mock.Mock
}

func (m *mockOfferRepository) Persist(ctx context.Context, offer models.CanonicalOffer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *mockOfferRepository) MarkMissingInactive(ctx context.Context, externalIDs []string) (int64, error) {
	args := m.Called(ctx, externalIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOfferRepository) ActiveGhosts(ctx context.Context, externalIDs []string, limit int) ([]string, error) {
	args := m.Called(ctx, externalIDs, limit)
	return args.Get(0).([]string), args.Error(1)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping() error { return m.err }

func validOffer(id string) models.CanonicalOffer {
	return models.CanonicalOffer{
		Source:     sources.SourceAdzuna,
		ExternalID: id,
		Title:      "Data Engineer",
		Location:   "LILLE",
	}
}

func Test_Load_WhenAllOffersValid_ShouldPersistEverything(t *testing.T) {
	repo := &mockOfferRepository{}
	repo.On("Persist", mock.Anything, mock.Anything).Return(nil)

	loader, err := NewLoader(repo, &mockPinger{}, 4)
	require.NoError(t, err)

	report, err := loader.Load(context.Background(),
		[]models.CanonicalOffer{validOffer("1"), validOffer("2"), validOffer("3")})

	require.NoError(t, err)
	assert.Equal(t, 3, report.Inserted)
	assert.Equal(t, 0, report.Skipped)
	repo.AssertNumberOfCalls(t, "Persist", 3)
}

func Test_Load_WhenOfferInvalid_ShouldSkipWithoutPersisting(t *testing.T) {
	repo := &mockOfferRepository{}
	repo.On("Persist", mock.Anything, mock.Anything).Return(nil)

	loader, err := NewLoader(repo, &mockPinger{}, 2)
	require.NoError(t, err)

	missingTitle := validOffer("bad")
	missingTitle.Title = ""
	missingPlace := validOffer("worse")
	missingPlace.Location = ""

	report, err := loader.Load(context.Background(),
		[]models.CanonicalOffer{validOffer("1"), missingTitle, missingPlace})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 2, report.Skipped)
	assert.Len(t, report.SkippedSample, 2)
	repo.AssertNumberOfCalls(t, "Persist", 1)
}

func Test_Load_WhenCountryPresent_ShouldAcceptMissingLocation(t *testing.T) {
	repo := &mockOfferRepository{}
	repo.On("Persist", mock.Anything, mock.Anything).Return(nil)

	loader, err := NewLoader(repo, &mockPinger{}, 2)
	require.NoError(t, err)

	countryOnly := validOffer("1")
	countryOnly.Location = ""
	countryOnly.Country = "FRANCE"

	report, err := loader.Load(context.Background(), []models.CanonicalOffer{countryOnly})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
}

func Test_Load_WhenPersistFails_ShouldCountAsSkippedAndContinue(t *testing.T) {
	repo := &mockOfferRepository{}
	repo.On("Persist", mock.Anything, mock.MatchedBy(func(o models.CanonicalOffer) bool {
		return o.ExternalID == "broken"
	})).Return(errors.New("constraint violation"))
	repo.On("Persist", mock.Anything, mock.Anything).Return(nil)

	loader, err := NewLoader(repo, &mockPinger{}, 1)
	require.NoError(t, err)

	report, err := loader.Load(context.Background(),
		[]models.CanonicalOffer{validOffer("1"), validOffer("broken"), validOffer("2")})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"broken"}, report.SkippedSample)
}

func Test_Load_WhenDatabaseUnreachable_ShouldFailBeforePersisting(t *testing.T) {
	repo := &mockOfferRepository{}

	loader, err := NewLoader(repo, &mockPinger{err: errors.New("connection refused")}, 2)
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), []models.CanonicalOffer{validOffer("1")})

	assert.ErrorIs(t, err, ErrDatabaseUnreachable)
	repo.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything)
}

func Test_Reconcile_ShouldUseUniqueNonEmptyIds(t *testing.T) {
	repo := &mockOfferRepository{}
	repo.On("MarkMissingInactive", mock.Anything, []string{"1", "2"}).Return(int64(3), nil)
	repo.On("ActiveGhosts", mock.Anything, []string{"1", "2"}, 10).Return([]string{}, nil)

	loader, err := NewLoader(repo, &mockPinger{}, 2)
	require.NoError(t, err)

	offers := []models.CanonicalOffer{
		validOffer("1"), validOffer("2"), validOffer("1"),
	}
	noID := validOffer("")
	offers = append(offers, noID)

	require.NoError(t, loader.Reconcile(context.Background(), offers))
	repo.AssertExpectations(t)
}
