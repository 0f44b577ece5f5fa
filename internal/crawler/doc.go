// Package crawler extracts outbound links from listing pages.
//
// Harvesters fetch a fixed set of pages (AI directories, GitHub topic
// listings) and hand the markup to ExtractHosts, which walks the DOM and
// returns the host of every absolute http(s) hyperlink.
//
// Links are collected but never followed; each listing page is read once.
//
// # Usage
//
//	hosts, err := crawler.ExtractHosts(bytes.NewReader(body))
//	for _, host := range hosts {
//	    ...
//	}
package crawler
