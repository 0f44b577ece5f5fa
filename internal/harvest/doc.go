// Package harvest collects raw candidate hostnames from external sources.
//
// Each Harvester talks to one kind of source and returns a
// model.HarvestResult. A harvester never aborts the run: network errors,
// unexpected status codes, rate limiting and unparsable responses are
// recorded as model.OutcomeDegraded together with whatever candidates were
// gathered before and after the failure.
//
// Sources:
//   - Directory: AI tool directories and product listing pages
//   - CertLog: the crt.sh certificate-transparency search
//   - Topics: GitHub topic listing pages
package harvest
