package client

import (
	"context"

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/conformance"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/projection"
)

// Backend is what ocsfctl commands run against: a schema service over HTTP
// or an in-process engine. Version accepts any supported spelling plus
// "default" and "latest".
type Backend interface {
	Versions(ctx context.Context) ([]Version, error)
	Classes(ctx context.Context, version string) ([]EventClass, error)
	Class(ctx context.Context, version, class string) (*EventClass, error)
	Project(ctx context.Context, version string, req ProjectionRequest) (*projection.Document, error)
	Validate(ctx context.Context, version string, req ValidationRequest) (*conformance.Report, error)
	Sample(ctx context.Context, version string, req SampleRequest) (*Sample, error)
}

var _ Backend = (*SchemaClient)(nil)
