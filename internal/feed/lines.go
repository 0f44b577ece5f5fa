package feed

import (
	"bytes"

	"github.com/nao1215/aiblockfeed/internal/model"
)

// lineEmitter writes one domain per line. Several consumers share the
// format and differ only in file name.
type lineEmitter struct {
	name     string
	fileName string
}

// Plain writes domains.txt.
func Plain() Emitter {
	return lineEmitter{name: "plain", fileName: "domains.txt"}
}

// PiHole writes a gravity adlist.
func PiHole() Emitter {
	return lineEmitter{name: "pihole", fileName: "pi-hole.txt"}
}

// PfBlockerNG writes a DNSBL feed list.
func PfBlockerNG() Emitter {
	return lineEmitter{name: "pfblockerng", fileName: "pfblockerng.txt"}
}

// Name returns the emitter name given at construction.
func (e lineEmitter) Name() string { return e.name }

// FileName returns the output file name given at construction.
func (e lineEmitter) FileName() string { return e.fileName }

func (e lineEmitter) Render(set model.DomainSet) []byte {
	var buf bytes.Buffer
	for _, d := range set.Sorted() {
		buf.WriteString(d.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// squidEmitter writes a dstdomain ACL and the rule that denies it.
type squidEmitter struct{}

// Squid writes squid_acl.conf.
func Squid() Emitter {
	return squidEmitter{}
}

// Name returns "squid".
func (squidEmitter) Name() string { return "squid" }

// FileName returns the Squid ACL file name.
func (squidEmitter) FileName() string { return "squid_acl.conf" }

func (squidEmitter) Render(set model.DomainSet) []byte {
	var buf bytes.Buffer
	buf.WriteString("acl ai_sites dstdomain")
	for _, d := range set.Sorted() {
		buf.WriteByte(' ')
		buf.WriteString(d.String())
	}
	buf.WriteString("\nhttp_access deny ai_sites\n")
	return buf.Bytes()
}
