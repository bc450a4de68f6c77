package cloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// InstanceCreateOpts holds all parameters for creating a build-agent instance.
type InstanceCreateOpts struct {
	Name       string
	ServerType string
	Image      string
	Location   string
	Labels     map[string]string
	UserData   string
}

// OperationStatus is the provider-reported status of an asynchronous operation.
type OperationStatus string

// Hetzner Cloud action statuses. Both success and error are terminal: an
// errored action is finished and will never progress further.
const (
	OperationStatusRunning OperationStatus = "running"
	OperationStatusSuccess OperationStatus = "success"
	OperationStatusError   OperationStatus = "error"
)

// Terminal reports whether the operation has finished, successfully or not.
func (s OperationStatus) Terminal() bool {
	return s == OperationStatusSuccess || s == OperationStatusError
}

// OperationState is the observed state of an asynchronous operation.
type OperationState struct {
	Status OperationStatus
	// Message carries the provider's error message when Status is
	// OperationStatusError.
	Message string
}

// InstanceClient defines the provider surface used by the fleet core.
type InstanceClient interface {
	// ListInstances returns all instances managed by this process in the
	// client's cloud, regardless of status.
	ListInstances(ctx context.Context) ([]*hcloud.Server, error)

	// CreateInstanceAsync starts creation of a new instance and returns the
	// provider's operation ID without waiting for completion.
	CreateInstanceAsync(ctx context.Context, opts InstanceCreateOpts) (int64, error)

	// TerminateInstanceAsync starts deletion of the named instance and
	// returns the provider's operation ID without waiting for completion.
	// A terminate already issued cannot be retracted.
	TerminateInstanceAsync(ctx context.Context, name string) (int64, error)

	// GetOperationStatus returns the current state of an asynchronous
	// operation by its ID.
	GetOperationStatus(ctx context.Context, operationID int64) (OperationState, error)
}
