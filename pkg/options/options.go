// Package options defines the generic options interface shared by all
// configuration groups.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join concatenates prefixes with "." and appends a trailing "." when
// non-empty, producing flag names like "milvus.address" or
// "assistant.milvus.address". Prefixes may carry their own dots;
// separators are normalized so "embedding." does not become "embedding..".
func Join(prefixes ...string) string {
	parts := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.Trim(p, "."); p != "" {
			parts = append(parts, p)
		}
	}
	joined := strings.Join(parts, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions is implemented by every configuration group.
type IOptions interface {
	// Validate checks the options and may normalize them.
	Validate() []error

	// AddFlags registers flags for the group on the given flagset.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
