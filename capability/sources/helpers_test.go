package sources_test

import "github.com/reglet-dev/extcompat/capability"

func capabilityName(s string) capability.Name {
	return capability.Name(s)
}
