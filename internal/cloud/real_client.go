package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/buildfleet/buildfleet/internal/util/labels"
	"github.com/buildfleet/buildfleet/internal/util/retry"
)

// RealClient implements InstanceClient against the Hetzner Cloud API.
// A RealClient is scoped to one managed cloud: listings are filtered to
// instances carrying that cloud's labels.
type RealClient struct {
	client            *hcloud.Client
	cloudName         string
	retryMaxAttempts  int
	retryInitialDelay time.Duration
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// WithRetry overrides the retry budget for instance creation.
func WithRetry(maxAttempts int, initialDelay time.Duration) ClientOption {
	return func(c *RealClient) {
		c.retryMaxAttempts = maxAttempts
		c.retryInitialDelay = initialDelay
	}
}

// NewRealClient creates a client for one managed cloud.
func NewRealClient(token, cloudName string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:            hcloud.NewClient(hcloud.WithToken(token)),
		cloudName:         cloudName,
		retryMaxAttempts:  3,
		retryInitialDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListInstances returns all managed instances of this cloud, any status.
func (c *RealClient) ListInstances(ctx context.Context) ([]*hcloud.Server, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labels.CloudSelector(c.cloudName)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	return servers, nil
}

// CreateInstanceAsync starts creation of a new instance. The returned ID
// identifies the provider action; completion is observed via
// GetOperationStatus, never awaited here.
func (c *RealClient) CreateInstanceAsync(ctx context.Context, opts InstanceCreateOpts) (int64, error) {
	createOpts, err := c.buildCreateOpts(ctx, opts)
	if err != nil {
		return 0, err
	}

	var result hcloud.ServerCreateResult
	err = retry.WithExponentialBackoff(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, createOpts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	},
		retry.WithMaxRetries(c.retryMaxAttempts),
		retry.WithInitialDelay(c.retryInitialDelay))
	if err != nil {
		return 0, fmt.Errorf("failed to create instance %s: %w", opts.Name, err)
	}

	return result.Action.ID, nil
}

// buildCreateOpts resolves named resources into hcloud create options.
func (c *RealClient) buildCreateOpts(ctx context.Context, opts InstanceCreateOpts) (hcloud.ServerCreateOpts, error) {
	serverType, _, err := c.client.ServerType.Get(ctx, opts.ServerType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", opts.ServerType)
	}

	image, _, err := c.client.Image.GetForArchitecture(ctx, opts.Image, serverType.Architecture)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get image: %w", err)
	}
	if image == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("image not found: %s", opts.Image)
	}

	var location *hcloud.Location
	if opts.Location != "" {
		location, _, err = c.client.Location.Get(ctx, opts.Location)
		if err != nil {
			return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get location %s: %w", opts.Location, err)
		}
		if location == nil {
			return hcloud.ServerCreateOpts{}, fmt.Errorf("location not found: %s", opts.Location)
		}
	}

	return hcloud.ServerCreateOpts{
		Name:       opts.Name,
		ServerType: serverType,
		Image:      image,
		Location:   location,
		Labels:     opts.Labels,
		UserData:   opts.UserData,
	}, nil
}

// TerminateInstanceAsync starts deletion of the named instance. There is no
// retry here: a failed terminate is simply re-attempted on the next sweep.
func (c *RealClient) TerminateInstanceAsync(ctx context.Context, name string) (int64, error) {
	server, _, err := c.client.Server.Get(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get instance %s: %w", name, err)
	}
	if server == nil {
		return 0, fmt.Errorf("instance not found: %s", name)
	}

	result, _, err := c.client.Server.DeleteWithResult(ctx, server)
	if err != nil {
		return 0, fmt.Errorf("failed to terminate instance %s: %w", name, err)
	}

	return result.Action.ID, nil
}

// GetOperationStatus returns the current state of an operation by ID.
func (c *RealClient) GetOperationStatus(ctx context.Context, operationID int64) (OperationState, error) {
	action, _, err := c.client.Action.GetByID(ctx, operationID)
	if err != nil {
		return OperationState{}, fmt.Errorf("failed to get operation %d: %w", operationID, err)
	}
	if action == nil {
		return OperationState{}, fmt.Errorf("operation not found: %d", operationID)
	}

	state := OperationState{Status: OperationStatus(action.Status)}
	if action.Status == hcloud.ActionStatusError {
		state.Message = fmt.Sprintf("%s: %s", action.ErrorCode, action.ErrorMessage)
	}
	return state, nil
}
