package mocks

import (
	"github.com/rpsms/sms-organizer-backend/internal/storage"
	"github.com/stretchr/testify/mock"
)

// MockSnapshotStorage implements storage.SnapshotStorage
type MockSnapshotStorage struct {
	mock.Mock
}

// Save stores snapshot bytes and returns the generated name
func (m *MockSnapshotStorage) Save(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

// Get retrieves a snapshot by name
func (m *MockSnapshotStorage) Get(name string) ([]byte, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// List returns the stored snapshots
func (m *MockSnapshotStorage) List() ([]storage.SnapshotInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.SnapshotInfo), args.Error(1)
}

// Delete removes a snapshot by name
func (m *MockSnapshotStorage) Delete(name string) error {
	args := m.Called(name)
	return args.Error(0)
}
