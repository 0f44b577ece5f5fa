package feed

import (
	"bytes"
	"fmt"

	"github.com/miekg/dns"
	"github.com/nao1215/aiblockfeed/internal/model"
)

// DefaultZone is the response-policy zone name.
const DefaultZone = "ai-block.local"

// RPZ timers, in seconds.
const (
	rpzTTL     = 7200
	rpzRefresh = 3600
	rpzRetry   = 900
	rpzExpire  = 2592000
	rpzMinTTL  = 7200
)

// RPZ writes a response-policy zone. Each domain becomes a CNAME to the
// root, which RPZ-aware resolvers answer with NXDOMAIN.
type RPZ struct {
	zone string
}

// NewRPZ creates an RPZ emitter for the given zone. An empty zone selects
// DefaultZone.
func NewRPZ(zone string) *RPZ {
	if zone == "" {
		zone = DefaultZone
	}
	return &RPZ{zone: dns.Fqdn(zone)}
}

// Name returns "rpz".
func (r *RPZ) Name() string { return "rpz" }

// FileName returns the zone file name.
func (r *RPZ) FileName() string { return "rpz.zone" }

// Render writes the $ORIGIN and $TTL directives, the SOA and NS records, and
// one policy record per domain. Records are owned by names under the zone
// origin, as RPZ requires.
func (r *RPZ) Render(set model.DomainSet) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "$ORIGIN %s\n", r.zone)
	fmt.Fprintf(&buf, "$TTL %d\n", rpzTTL)

	soa := &dns.SOA{
		Hdr:     r.header(r.zone, dns.TypeSOA),
		Ns:      "localhost.",
		Mbox:    "root.localhost.",
		Serial:  1,
		Refresh: rpzRefresh,
		Retry:   rpzRetry,
		Expire:  rpzExpire,
		Minttl:  rpzMinTTL,
	}
	ns := &dns.NS{
		Hdr: r.header(r.zone, dns.TypeNS),
		Ns:  "localhost.",
	}
	buf.WriteString(soa.String())
	buf.WriteByte('\n')
	buf.WriteString(ns.String())
	buf.WriteByte('\n')

	for _, d := range set.Sorted() {
		rr := &dns.CNAME{
			Hdr:    r.header(d.String()+"."+r.zone, dns.TypeCNAME),
			Target: ".",
		}
		buf.WriteString(rr.String())
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func (r *RPZ) header(name string, rrtype uint16) dns.RR_Header {
	return dns.RR_Header{
		Name:   name,
		Rrtype: rrtype,
		Class:  dns.ClassINET,
		Ttl:    rpzTTL,
	}
}
