package probe

import (
	"context"
	"fmt"
	"strings"

	"frameworks/dbdoctor/pkg/classify"
	"frameworks/dbdoctor/pkg/health"
)

// Environment inspects the descriptor for pooling parameters. It needs no
// connection and never gates later probes.
type Environment struct {
	PoolingKeys    []string
	RequirePooling bool
}

func (p *Environment) Name() string { return EnvironmentName }

func (p *Environment) Description() string {
	return "Check the connection string for pooling parameters"
}

func (p *Environment) NeedsConnection() bool { return false }

func (p *Environment) Gates() bool { return false }

func (p *Environment) Run(_ context.Context, env Env) health.Finding {
	pooling := env.Descriptor.ParamsIn(p.PoolingKeys)
	if len(pooling) > 0 {
		return health.OK(p.Name(), fmt.Sprintf("pooling parameters set (%s)", strings.Join(pooling, ", "))).
			WithMetadata("pooling", strings.Join(pooling, ","))
	}

	f := health.Warn(p.Name(),
		fmt.Sprintf("no pooling parameter set (%s)", strings.Join(p.PoolingKeys, ", ")),
		classify.Recommend(health.CategoryPooling))
	if !p.RequirePooling {
		f = f.AsAdvisory()
	}
	return f.WithMetadata("pooling", "-")
}
