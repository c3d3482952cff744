package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/paxosfleet/internal/util/retry"
)

// CreateResult wraps a created resource and the action to await, if any.
type CreateResult[T any] struct {
	Resource T
	Action   *hcloud.Action
}

// DeleteOperation deletes a named hcloud resource.
//
//	return (&DeleteOperation[*hcloud.SSHKey]{
//	    Name:         name,
//	    ResourceType: "ssh key",
//	    Get:          c.client.SSHKey.Get,
//	    Delete:       c.client.SSHKey.Delete,
//	}).Execute(ctx, c)
type DeleteOperation[T any] struct {
	Name         string
	ResourceType string

	Get    func(ctx context.Context, name string) (T, *hcloud.Response, error)
	Delete func(ctx context.Context, resource T) (*hcloud.Response, error)
}

// Execute deletes the resource under the delete timeout. A missing resource
// counts as deleted. Locked resources are retried with backoff, every other
// error is returned immediately.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeouts.Delete)
	defer cancel()

	return retry.WithExponentialBackoff(ctx, func() error {
		resource, _, err := op.Get(ctx, op.Name)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to get %s: %w", op.ResourceType, err))
		}
		if reflect.ValueOf(resource).IsNil() {
			return nil
		}

		if _, err := op.Delete(ctx, resource); err != nil {
			if retryableDelete(err) {
				return err
			}
			return retry.Fatal(fmt.Errorf("failed to delete %s %s: %w", op.ResourceType, op.Name, err))
		}
		return nil
	},
		retry.WithMaxRetries(client.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(client.timeouts.RetryInitialDelay))
}

// EnsureOperation returns a named hcloud resource, creating it when missing.
// Validate, when set, rejects an existing resource that differs from the
// desired one.
type EnsureOperation[T any, CreateOpts any] struct {
	Name         string
	ResourceType string

	Get              func(ctx context.Context, name string) (T, *hcloud.Response, error)
	Create           func(ctx context.Context, opts CreateOpts) (*CreateResult[T], *hcloud.Response, error)
	Validate         func(resource T) error
	CreateOptsMapper func() CreateOpts
}

// Execute performs the get-or-create.
func (op *EnsureOperation[T, CreateOpts]) Execute(ctx context.Context, client *RealClient) (T, error) {
	var zero T

	resource, _, err := op.Get(ctx, op.Name)
	if err != nil {
		return zero, fmt.Errorf("failed to get %s: %w", op.ResourceType, err)
	}

	if !reflect.ValueOf(resource).IsNil() {
		if op.Validate != nil {
			if err := op.Validate(resource); err != nil {
				return zero, err
			}
		}
		return resource, nil
	}

	result, _, err := op.Create(ctx, op.CreateOptsMapper())
	if err != nil {
		return zero, fmt.Errorf("failed to create %s: %w", op.ResourceType, err)
	}
	if result.Action != nil {
		if err := client.client.Action.WaitFor(ctx, result.Action); err != nil {
			return zero, fmt.Errorf("failed to wait for %s creation: %w", op.ResourceType, err)
		}
	}
	return result.Resource, nil
}

// simpleCreate adapts create functions that return the resource directly.
func simpleCreate[T any, Opts any](
	createFn func(context.Context, Opts) (T, *hcloud.Response, error),
) func(context.Context, Opts) (*CreateResult[T], *hcloud.Response, error) {
	return func(ctx context.Context, opts Opts) (*CreateResult[T], *hcloud.Response, error) {
		resource, resp, err := createFn(ctx, opts)
		if err != nil {
			return nil, resp, err
		}
		return &CreateResult[T]{Resource: resource}, resp, nil
	}
}
