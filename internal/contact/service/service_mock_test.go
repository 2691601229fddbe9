package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rolodex/internal/contact/events"
	"rolodex/internal/contact/models"
	"rolodex/internal/contact/service/mocks"
	"rolodex/internal/contact/store"
	dErrors "rolodex/pkg/domain-errors"
)

//go:generate mockgen -destination=mocks/store-mocks.go -package=mocks rolodex/internal/contact/store Store

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.Event) error {
	return errors.New("broker down")
}

func newMockedService(t *testing.T, opts ...Option) (*Service, *mocks.MockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	return New(mockStore, opts...), mockStore
}

func TestStoreReadFailuresAreInternal(t *testing.T) {
	boom := errors.New("connection refused")
	ctx := context.Background()

	cases := map[string]func(*Service) *dErrors.Error{
		"create": func(s *Service) *dErrors.Error { return s.Create(ctx, contact("Ada")).Err() },
		"get":    func(s *Service) *dErrors.Error { return s.Get(ctx, 1).Err() },
		"list":   func(s *Service) *dErrors.Error { return s.List(ctx).Err() },
		"update": func(s *Service) *dErrors.Error { return s.Update(ctx, &models.Contact{ID: 1, Name: "Ada"}).Err() },
		"delete": func(s *Service) *dErrors.Error { return s.Delete(ctx, 1).Err() },
		"search": func(s *Service) *dErrors.Error {
			return s.Search(ctx, SearchQuery{Name: strPtr("ada")}).Err()
		},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			svc, mockStore := newMockedService(t)
			mockStore.EXPECT().GetAllContacts(gomock.Any()).Return(nil, boom)

			err := call(svc)
			require.NotNil(t, err)
			assert.Equal(t, dErrors.CodeInternal, err.Code)
			assert.Equal(t, dErrors.DefaultInternalMessage, err.Message)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestStoreDeadlineIsTimeout(t *testing.T) {
	svc, mockStore := newMockedService(t)
	mockStore.EXPECT().GetAllContacts(gomock.Any()).Return(nil, context.DeadlineExceeded)

	err := svc.List(context.Background()).Err()
	require.NotNil(t, err)
	assert.Equal(t, dErrors.CodeTimeout, err.Code)
	assert.Equal(t, dErrors.DefaultInternalMessage, err.Message)
}

func TestCreateLosingTheStoreRaceIsConflict(t *testing.T) {
	svc, mockStore := newMockedService(t)
	mockStore.EXPECT().GetAllContacts(gomock.Any()).Return([]*models.Contact{}, nil)
	mockStore.EXPECT().CreateContact(gomock.Any(), gomock.Any()).Return(nil, store.ErrConflict)

	out := svc.Create(context.Background(), contact("Ada"))
	require.False(t, out.OK())
	assert.Equal(t, dErrors.CodeConflict, out.Err().Code)
	assert.Equal(t, MsgConflict, out.Err().Message)
}

func TestCreateConflictSkipsTheWrite(t *testing.T) {
	svc, mockStore := newMockedService(t)
	mockStore.EXPECT().GetAllContacts(gomock.Any()).Return([]*models.Contact{{ID: 1, Name: "Ada"}}, nil)

	out := svc.Create(context.Background(), contact("Ada"))
	assert.Equal(t, dErrors.CodeConflict, out.Err().Code)
}

func TestCreateWriteFailureIsInternal(t *testing.T) {
	svc, mockStore := newMockedService(t)
	mockStore.EXPECT().GetAllContacts(gomock.Any()).Return(nil, nil)
	mockStore.EXPECT().CreateContact(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))

	out := svc.Create(context.Background(), contact("Ada"))
	assert.Equal(t, dErrors.CodeInternal, out.Err().Code)
}

func TestUpdateOfConcurrentlyDeletedContactIsNotFound(t *testing.T) {
	svc, mockStore := newMockedService(t)
	mockStore.EXPECT().GetAllContacts(gomock.Any()).Return([]*models.Contact{{ID: 7, Name: "Ada"}}, nil)
	mockStore.EXPECT().UpdateContact(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)

	out := svc.Update(context.Background(), &models.Contact{ID: 7, Name: "Ada"})
	assert.Equal(t, dErrors.CodeNotFound, out.Err().Code)
	assert.Equal(t, MsgNotFound, out.Err().Message)
}

func TestDeleteReportsTheStoreFlag(t *testing.T) {
	svc, mockStore := newMockedService(t)
	mockStore.EXPECT().GetAllContacts(gomock.Any()).Return([]*models.Contact{{ID: 3, Name: "Ada"}}, nil)
	mockStore.EXPECT().DeleteContact(gomock.Any(), int64(3)).Return(false, nil)

	out := svc.Delete(context.Background(), 3)
	require.True(t, out.OK())
	assert.False(t, out.Value())
}

func TestSearchWithoutCriteriaDoesNotReadTheStore(t *testing.T) {
	svc, _ := newMockedService(t)

	out := svc.Search(context.Background(), SearchQuery{})
	assert.Equal(t, dErrors.CodeBadRequest, out.Err().Code)
}

func TestPublishFailureDoesNotFailTheOperation(t *testing.T) {
	svc, mockStore := newMockedService(t, WithPublisher(failingPublisher{}))
	mockStore.EXPECT().GetAllContacts(gomock.Any()).Return(nil, nil)
	mockStore.EXPECT().CreateContact(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *models.Contact) (*models.Contact, error) {
			out := c.Clone()
			out.ID = 1
			return out, nil
		})

	out := svc.Create(context.Background(), contact("Ada"))
	require.True(t, out.OK())
	assert.Equal(t, int64(1), out.Value().ID)
}
