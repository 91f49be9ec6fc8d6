package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/opmodel/tscompiler/internal/discovery"
)

// loadCatalog reads a project's semantics catalog paths and runs Project
// Discovery (C3) over the combined class facts.
//
// Project Discovery's input contract is a []discovery.ClassFact handed
// in by an opaque host-AST collaborator (internal/discovery's own doc
// comment: extracting facts from TypeScript source is out of this
// repo's scope). This CLI adapter's collaborator is a pre-extracted
// JSON fact file per catalog path, the same "opaque upstream, frozen as
// a data contract" shape internal/htmldoc plays for the HTML parser.
func loadCatalog(paths []string) (*discovery.Snapshot, error) {
	var facts []discovery.ClassFact
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading semantics catalog %s: %w", p, err)
		}
		var pageFacts []discovery.ClassFact
		if err := json.Unmarshal(data, &pageFacts); err != nil {
			return nil, fmt.Errorf("decoding semantics catalog %s: %w", p, err)
		}
		facts = append(facts, pageFacts...)
	}
	return discovery.Discover(facts), nil
}
