package dashboard

import (
	"context"

	"ohara-cli/internal/model"
)

// MetadataBackend is the vocabulary half of the REST API.
type MetadataBackend interface {
	GetMetadata(ctx context.Context) (model.Metadata, error)
	AddCategory(ctx context.Context, name string) error
	RemoveCategory(ctx context.Context, name string) error
	AddTag(ctx context.Context, name string) error
	RemoveTag(ctx context.Context, name string) error
}

// Backend is everything the dashboard consumes from the REST API. *api.Client implements it.
type Backend interface {
	MetadataBackend
	ListTouchpoints(ctx context.Context) ([]model.Touchpoint, error)
	CreateTouchpoint(ctx context.Context, in model.TouchpointInput) (model.Touchpoint, error)
	UpdateTouchpoint(ctx context.Context, id string, in model.TouchpointInput) (model.Touchpoint, error)
	DeleteTouchpoint(ctx context.Context, id string) error
}
