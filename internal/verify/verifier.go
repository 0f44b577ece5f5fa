// Package verify checks that candidate domains still resolve.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/nao1215/aiblockfeed/internal/model"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds each of the A and AAAA lookups.
const DefaultTimeout = 3 * time.Second

// resolvConfPath is read for upstream nameservers.
const resolvConfPath = "/etc/resolv.conf"

// FallbackServers are used when resolv.conf cannot be read.
var FallbackServers = []string{"1.1.1.1:53", "8.8.8.8:53"}

var (
	// ErrNoRecords is returned when the upstream answered but the answer
	// holds no record of the requested type.
	ErrNoRecords = errors.New("no records of requested type")

	// ErrRcode is wrapped when the upstream answered with a failure code
	// such as NXDOMAIN or SERVFAIL.
	ErrRcode = errors.New("dns failure response")

	// ErrNoServers is returned when the verifier has no upstream to ask.
	ErrNoServers = errors.New("no dns servers configured")
)

// Verifier checks for live address records by querying upstream
// resolvers directly. A and AAAA are separate lookups, each with its own
// timeout, and a failure keeps the upstream response code. Truncated UDP
// answers are repeated over TCP.
type Verifier struct {
	client    *dns.Client
	tcpClient *dns.Client
	servers   []string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithServers sets the upstream resolvers in "host:port" form.
// A server given without a port gets port 53.
func WithServers(servers []string) Option {
	return func(v *Verifier) {
		if len(servers) == 0 {
			return
		}
		v.servers = make([]string, len(servers))
		for i, s := range servers {
			v.servers[i] = withDefaultPort(s)
		}
	}
}

// WithTimeout sets the per-lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithRateLimit caps queries per second across all lookups.
// Zero or negative disables the cap.
func WithRateLimit(qps float64) Option {
	return func(v *Verifier) {
		if qps <= 0 {
			v.limiter = nil
			return
		}
		v.limiter = rate.NewLimiter(rate.Limit(qps), 1)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// New creates a Verifier. Without WithServers it reads resolv.conf.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(v)
	}

	if len(v.servers) == 0 {
		v.servers = SystemServers()
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	v.client = &dns.Client{Net: "udp", Timeout: v.timeout}
	v.tcpClient = &dns.Client{Net: "tcp", Timeout: v.timeout}

	return v
}

// SystemServers returns the nameservers from resolv.conf, or
// FallbackServers if the file is missing or empty.
func SystemServers() []string {
	cfg, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil || len(cfg.Servers) == 0 {
		return FallbackServers
	}

	out := make([]string, len(cfg.Servers))
	for i, s := range cfg.Servers {
		out[i] = net.JoinHostPort(s, cfg.Port)
	}
	return out
}

// Servers returns the upstreams in query order.
func (v *Verifier) Servers() []string {
	return v.servers
}

// Verify looks up an A record and, if that fails for any reason, an AAAA
// record. There are no further retries.
func (v *Verifier) Verify(ctx context.Context, d model.Domain) model.Verification {
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		err := v.lookup(ctx, d, qtype)
		if err == nil {
			return model.Verification{Resolvable: true, Family: dns.TypeToString[qtype]}
		}
		lastErr = err
		v.logger.Debug("lookup failed",
			"domain", d,
			"type", dns.TypeToString[qtype],
			"error", err,
		)
	}
	return model.Verification{Err: lastErr}
}

// lookup asks each upstream in order until one answers, all within a single
// per-lookup timeout.
func (v *Verifier) lookup(ctx context.Context, d model.Domain, qtype uint16) error {
	if len(v.servers) == 0 {
		return ErrNoServers
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if v.limiter != nil {
		if err := v.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(d.String()), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range v.servers {
		in, _, err := v.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if in.Truncated {
			in = v.exchangeTCP(ctx, msg, server, in)
		}
		return answerError(in, qtype)
	}
	return lastErr
}

// exchangeTCP repeats a query whose UDP answer was truncated. If the TCP
// exchange fails, the truncated answer is returned unchanged.
func (v *Verifier) exchangeTCP(ctx context.Context, msg *dns.Msg, server string, truncated *dns.Msg) *dns.Msg {
	in, _, err := v.tcpClient.ExchangeContext(ctx, msg, server)
	if err != nil {
		v.logger.Debug("tcp retry failed",
			"server", server,
			"question", msg.Question[0].Name,
			"error", err,
		)
		return truncated
	}
	return in
}

// answerError returns nil if the response holds a record of qtype.
func answerError(in *dns.Msg, qtype uint16) error {
	if in.Rcode != dns.RcodeSuccess {
		return fmt.Errorf("%w: %s", ErrRcode, dns.RcodeToString[in.Rcode])
	}
	for _, rr := range in.Answer {
		if rr.Header().Rrtype == qtype {
			return nil
		}
	}
	return ErrNoRecords
}

// withDefaultPort appends :53 when s has no port.
func withDefaultPort(s string) string {
	if _, _, err := net.SplitHostPort(s); err == nil {
		return s
	}
	return net.JoinHostPort(s, "53")
}
