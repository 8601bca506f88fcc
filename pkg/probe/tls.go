package probe

import (
	"context"
	"fmt"

	"frameworks/dbdoctor/pkg/health"
)

// TLS flags remote hosts reached without transport encryption. Loopback
// hosts and unix sockets are exempt.
type TLS struct {
	RequireTLS bool
}

func (p *TLS) Name() string { return TLSName }

func (p *TLS) Description() string {
	return "Check that remote hosts are reached with sslmode enabled"
}

func (p *TLS) NeedsConnection() bool { return false }

func (p *TLS) Gates() bool { return false }

func (p *TLS) Run(_ context.Context, env Env) health.Finding {
	d := env.Descriptor
	mode := d.SSLMode
	if mode == "" {
		mode = "unset"
	}

	if d.IsLoopback() {
		return health.OK(p.Name(), fmt.Sprintf("sslmode %s on loopback host", mode)).
			WithMetadata("sslmode", mode)
	}
	if d.SSLMode != "" && d.SSLMode != "disable" {
		return health.OK(p.Name(), fmt.Sprintf("sslmode=%s", mode)).
			WithMetadata("sslmode", mode)
	}

	f := health.Warn(p.Name(),
		fmt.Sprintf("sslmode is %s for remote host %s", mode, d.Host),
		health.Recommendation{
			Category: health.CategoryConfiguration,
			Text:     "Set sslmode=require (or verify-full) when connecting to a remote host",
		})
	if !p.RequireTLS {
		f = f.AsAdvisory()
	}
	return f.WithMetadata("sslmode", mode)
}
