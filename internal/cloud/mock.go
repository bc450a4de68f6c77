package cloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// MockClient implements InstanceClient for tests. Each method delegates to
// the corresponding Func field when set and otherwise returns a benign
// default.
type MockClient struct {
	ListInstancesFunc          func(ctx context.Context) ([]*hcloud.Server, error)
	CreateInstanceAsyncFunc    func(ctx context.Context, opts InstanceCreateOpts) (int64, error)
	TerminateInstanceAsyncFunc func(ctx context.Context, name string) (int64, error)
	GetOperationStatusFunc     func(ctx context.Context, operationID int64) (OperationState, error)
}

// ListInstances implements InstanceClient.
func (m *MockClient) ListInstances(ctx context.Context) ([]*hcloud.Server, error) {
	if m.ListInstancesFunc != nil {
		return m.ListInstancesFunc(ctx)
	}
	return nil, nil
}

// CreateInstanceAsync implements InstanceClient.
func (m *MockClient) CreateInstanceAsync(ctx context.Context, opts InstanceCreateOpts) (int64, error) {
	if m.CreateInstanceAsyncFunc != nil {
		return m.CreateInstanceAsyncFunc(ctx, opts)
	}
	return 1, nil
}

// TerminateInstanceAsync implements InstanceClient.
func (m *MockClient) TerminateInstanceAsync(ctx context.Context, name string) (int64, error) {
	if m.TerminateInstanceAsyncFunc != nil {
		return m.TerminateInstanceAsyncFunc(ctx, name)
	}
	return 1, nil
}

// GetOperationStatus implements InstanceClient.
func (m *MockClient) GetOperationStatus(ctx context.Context, operationID int64) (OperationState, error) {
	if m.GetOperationStatusFunc != nil {
		return m.GetOperationStatusFunc(ctx, operationID)
	}
	return OperationState{Status: OperationStatusSuccess}, nil
}
