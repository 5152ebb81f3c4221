// Package xmlfix repairs malformed, truncated, or adversarially crafted
// XML-like text, typically produced by language models, into well-formed
// XML.
//
// The engine is tolerant: malformed input is the expected case
// and is repaired, never rejected. Truncated documents get their open tags
// closed, unquoted attribute values get quoted and escaped, typo'd closing
// tags are matched against open tags by edit distance, conversational text
// around the XML is stripped, and injection payloads can be filtered out.
//
// # Basic Usage
//
// Create an engine and repair a string:
//
//	engine := xmlfix.MustNew()
//	out, err := engine.Repair(`<root><user name="alice"`)
//	// out: `<root><user name="alice"></user></root>`
//
// Or use the package-level convenience function:
//
//	out, err := xmlfix.Repair(`<item id=123 type=product>`)
//	// out: `<item id="123" type="product"></item>`
//
// # Repair Reports
//
// RepairWithReport returns a full account of every repair performed:
//
//	out, report, err := engine.RepairWithReport(`Here you go: <root><item`)
//	for _, action := range report.Actions {
//	    fmt.Println(action)
//	}
//
// # Trust Levels
//
// Security features are bundled into trust tiers. Untrusted input (LLM
// output, user uploads) gets the full filter set; trusted fixtures skip it:
//
//	engine := xmlfix.MustNew(xmlfix.WithTrustLevel(xmlfix.TrustUntrusted))
//	out, _ := engine.Repair(llmResponse)
//
// # Streaming
//
// The streaming engine repairs chunked input incrementally, yielding output
// as soon as it is provably complete:
//
//	session := engine.OpenStream()
//	for chunk := range chunks {
//	    parts, err := session.Feed(chunk)
//	    ...
//	}
//	parts, err := session.Finalize() // closes remaining open tags
//
// # Configuration
//
// Customize the engine with functional options:
//
//	engine, _ := xmlfix.New(
//	    xmlfix.WithMatchThreshold(3),
//	    xmlfix.WithAutoWrapCDATA(true),
//	    xmlfix.WithLogger(logger),
//	)
package xmlfix
