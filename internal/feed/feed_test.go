package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miekg/dns"
	"github.com/nao1215/aiblockfeed/internal/model"
)

func sampleSet() model.DomainSet {
	return model.DomainSetFromStrings("openai.com", "claude.ai", "Mistral.ai")
}

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		emitter Emitter
		want    string
	}{
		{
			name:    "plain",
			emitter: Plain(),
			want:    "claude.ai\nmistral.ai\nopenai.com\n",
		},
		{
			name:    "pihole",
			emitter: PiHole(),
			want:    "claude.ai\nmistral.ai\nopenai.com\n",
		},
		{
			name:    "pfblockerng",
			emitter: PfBlockerNG(),
			want:    "claude.ai\nmistral.ai\nopenai.com\n",
		},
		{
			name:    "squid",
			emitter: Squid(),
			want:    "acl ai_sites dstdomain claude.ai mistral.ai openai.com\nhttp_access deny ai_sites\n",
		},
		{
			name:    "defender",
			emitter: Defender(),
			want: "IndicatorType,IndicatorValue,Action,Title,Description,Severity\n" +
				"Domain,claude.ai,Block,AI Domain Block,claude.ai,Informational\n" +
				"Domain,mistral.ai,Block,AI Domain Block,mistral.ai,Informational\n" +
				"Domain,openai.com,Block,AI Domain Block,openai.com,Informational\n",
		},
		{
			name:    "rpz",
			emitter: NewRPZ(""),
			want: "$ORIGIN ai-block.local.\n" +
				"$TTL 7200\n" +
				"ai-block.local.\t7200\tIN\tSOA\tlocalhost. root.localhost. 1 3600 900 2592000 7200\n" +
				"ai-block.local.\t7200\tIN\tNS\tlocalhost.\n" +
				"claude.ai.ai-block.local.\t7200\tIN\tCNAME\t.\n" +
				"mistral.ai.ai-block.local.\t7200\tIN\tCNAME\t.\n" +
				"openai.com.ai-block.local.\t7200\tIN\tCNAME\t.\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := string(tt.emitter.Render(sampleSet()))
			if got != tt.want {
				t.Errorf("Render() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRenderEmptySet(t *testing.T) {
	t.Parallel()

	empty := model.NewDomainSet()

	if got := Plain().Render(empty); len(got) != 0 {
		t.Errorf("plain: got %q, want empty", got)
	}
	if got := string(Squid().Render(empty)); got != "acl ai_sites dstdomain\nhttp_access deny ai_sites\n" {
		t.Errorf("squid: got %q", got)
	}
	if got := string(Defender().Render(empty)); got != "IndicatorType,IndicatorValue,Action,Title,Description,Severity\n" {
		t.Errorf("defender: got %q", got)
	}
	if got := string(NewRPZ("").Render(empty)); strings.Contains(got, "CNAME") {
		t.Errorf("rpz: unexpected policy records in %q", got)
	}
}

func TestEmitterNames(t *testing.T) {
	t.Parallel()

	want := []struct {
		name     string
		fileName string
	}{
		{"plain", "domains.txt"},
		{"rpz", "rpz.zone"},
		{"pihole", "pi-hole.txt"},
		{"pfblockerng", "pfblockerng.txt"},
		{"squid", "squid_acl.conf"},
		{"defender", "defender_indicators.csv"},
	}

	emitters := All()
	if len(emitters) != len(want) {
		t.Fatalf("All() returned %d emitters, want %d", len(emitters), len(want))
	}
	for i, e := range emitters {
		if e.Name() != want[i].name || e.FileName() != want[i].fileName {
			t.Errorf("emitter %d = %s/%s, want %s/%s", i, e.Name(), e.FileName(), want[i].name, want[i].fileName)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	a := model.DomainSetFromStrings("b.example", "a.example", "c.example")
	b := model.DomainSetFromStrings("c.example", "b.example", "a.example")

	for _, e := range All() {
		if string(e.Render(a)) != string(e.Render(b)) {
			t.Errorf("%s: output depends on insertion order", e.Name())
		}
	}
}

func TestRPZParses(t *testing.T) {
	t.Parallel()

	zone := NewRPZ("policy.example")
	data := string(zone.Render(sampleSet()))

	zp := dns.NewZoneParser(strings.NewReader(data), "", "rpz.zone")

	var soa, ns int
	var cnames []string
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		switch v := rr.(type) {
		case *dns.SOA:
			soa++
		case *dns.NS:
			ns++
		case *dns.CNAME:
			if v.Target != "." {
				t.Errorf("CNAME %s target = %q, want root", v.Hdr.Name, v.Target)
			}
			cnames = append(cnames, v.Hdr.Name)
		}
	}
	if err := zp.Err(); err != nil {
		t.Fatalf("zone does not parse: %v", err)
	}

	if soa != 1 || ns != 1 {
		t.Errorf("SOA/NS = %d/%d, want 1/1", soa, ns)
	}
	want := []string{"claude.ai.policy.example.", "mistral.ai.policy.example.", "openai.com.policy.example."}
	if strings.Join(cnames, ",") != strings.Join(want, ",") {
		t.Errorf("CNAME owners = %v, want %v", cnames, want)
	}
}

func TestWriteAll(t *testing.T) {
	t.Parallel()

	t.Run("writes every artifact", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "output")
		artifacts, err := WriteAll(dir, sampleSet(), All()...)
		if err != nil {
			t.Fatalf("WriteAll() error = %v", err)
		}

		wantFiles := []string{
			"domains.txt", "rpz.zone", "pi-hole.txt",
			"pfblockerng.txt", "squid_acl.conf", "defender_indicators.csv",
		}
		if len(artifacts) != len(wantFiles) {
			t.Fatalf("len(artifacts) = %d, want %d", len(artifacts), len(wantFiles))
		}
		for i, name := range wantFiles {
			if filepath.Base(artifacts[i].Path) != name {
				t.Errorf("artifact %d = %s, want %s", i, artifacts[i].Path, name)
			}
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil {
				t.Errorf("missing %s: %v", name, err)
				continue
			}
			if info.Size() != int64(artifacts[i].Bytes) {
				t.Errorf("%s: size %d, artifact says %d", name, info.Size(), artifacts[i].Bytes)
			}
		}

		got, err := os.ReadFile(filepath.Join(dir, "domains.txt"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "claude.ai\nmistral.ai\nopenai.com\n" {
			t.Errorf("domains.txt = %q", got)
		}
	})

	t.Run("unwritable directory is an error", func(t *testing.T) {
		t.Parallel()

		parent := t.TempDir()
		blocker := filepath.Join(parent, "file")
		if err := os.WriteFile(blocker, nil, 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := WriteAll(filepath.Join(blocker, "out"), sampleSet(), Plain()); err == nil {
			t.Error("expected an error when the output path is under a file")
		}
	})

	t.Run("empty directory is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := WriteAll("", sampleSet(), Plain()); err == nil {
			t.Error("expected an error for an empty directory")
		}
	})
}
