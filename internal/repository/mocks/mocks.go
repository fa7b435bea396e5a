package mocks

import (
	"context"

	"github.com/opencivic/govcontacts/internal/domain/agency"
	"github.com/opencivic/govcontacts/internal/domain/contact"
	"github.com/opencivic/govcontacts/internal/quota"
	"github.com/stretchr/testify/mock"
)

// AgencyRepository is a mock for agency.Repository.
type AgencyRepository struct {
	mock.Mock
}

func (m *AgencyRepository) Get(ctx context.Context, id string) (*agency.Agency, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*agency.Agency); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AgencyRepository) List(ctx context.Context, opts agency.ListOptions) ([]agency.Agency, int, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]agency.Agency); ok {
		return list, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *AgencyRepository) Upsert(ctx context.Context, a *agency.Agency) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// ContactRepository is a mock for contact.Repository.
type ContactRepository struct {
	mock.Mock
}

func (m *ContactRepository) List(ctx context.Context, opts contact.ListOptions) ([]contact.Contact, int, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]contact.Contact); ok {
		return list, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *ContactRepository) Upsert(ctx context.Context, c *contact.Contact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// QuotaStore is a mock for quota.Store.
type QuotaStore struct {
	mock.Mock
}

func (m *QuotaStore) Count(ctx context.Context, userID, day string) (int, error) {
	args := m.Called(ctx, userID, day)
	return args.Int(0), args.Error(1)
}

func (m *QuotaStore) Marks(ctx context.Context, userID, day string) (map[string]struct{}, error) {
	args := m.Called(ctx, userID, day)
	if marks, ok := args.Get(0).(map[string]struct{}); ok {
		return marks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QuotaStore) AddMarks(ctx context.Context, userID, day string, contactIDs []string) (int, error) {
	args := m.Called(ctx, userID, day, contactIDs)
	return args.Int(0), args.Error(1)
}

func (m *QuotaStore) IncrementCount(ctx context.Context, userID, day string, delta int) (int, error) {
	args := m.Called(ctx, userID, day, delta)
	return args.Int(0), args.Error(1)
}

func (m *QuotaStore) Charge(ctx context.Context, userID, day string, contactIDs []string, limit int) ([]string, []string, int, error) {
	args := m.Called(ctx, userID, day, contactIDs, limit)
	charged, _ := args.Get(0).([]string)
	marked, _ := args.Get(1).([]string)
	return charged, marked, args.Int(2), args.Error(3)
}

func (m *QuotaStore) Reset(ctx context.Context, userID, day string) error {
	args := m.Called(ctx, userID, day)
	return args.Error(0)
}

// Admitter is a mock for contact.Admitter.
type Admitter struct {
	mock.Mock
}

func (m *Admitter) Admit(ctx context.Context, userID string, candidates []string) (quota.Admission, error) {
	args := m.Called(ctx, userID, candidates)
	if adm, ok := args.Get(0).(quota.Admission); ok {
		return adm, args.Error(1)
	}
	return quota.Admission{}, args.Error(1)
}

func (m *Admitter) ViewedToday(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *Admitter) Remaining(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *Admitter) Reset(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *Admitter) Limit() int {
	args := m.Called()
	return args.Int(0)
}
