package hcloud

import (
	"errors"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// errorClass groups API error codes by how a caller should react.
type errorClass int

const (
	// classOther covers transport failures and codes not listed below.
	classOther errorClass = iota
	// classBusy means the resource is running another action.
	classBusy
	// classCapacity means the location or the API quota is exhausted for now.
	classCapacity
	// classPermanent means the request itself is wrong.
	classPermanent
)

func classify(err error) errorClass {
	var apiErr hcloud.Error
	if !errors.As(err, &apiErr) {
		return classOther
	}
	switch apiErr.Code {
	case hcloud.ErrorCodeLocked, hcloud.ErrorCodeConflict, hcloud.ErrorCodeResourceLocked:
		return classBusy
	case hcloud.ErrorCodeResourceUnavailable, hcloud.ErrorCodeRateLimitExceeded:
		return classCapacity
	case hcloud.ErrorCodeNotFound, hcloud.ErrorCodeInvalidInput,
		hcloud.ErrorCodeInvalidServerType, hcloud.ErrorCodeUniquenessError:
		return classPermanent
	default:
		return classOther
	}
}

// retryableDelete reports whether a delete may succeed once the resource's
// current action finishes.
func retryableDelete(err error) bool {
	return classify(err) == classBusy
}

// retryableCreate reports whether a server create is worth repeating.
// Capacity in a location frees up, so unavailable resources count too.
func retryableCreate(err error) bool {
	switch classify(err) {
	case classBusy, classCapacity:
		return true
	default:
		return false
	}
}
