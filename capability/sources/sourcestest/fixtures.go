// Package sourcestest provides declaration-table fixtures shaped like the
// files a real host installation ships.
package sourcestest

import (
	"fmt"
	"strings"
)

// CoreNames are the capabilities present in every fixture.
var CoreNames = []string{
	"activeComment",
	"aiRelatedInformation",
	"chatHooks",
	"chatParticipantPrivate",
	"chatProvider",
	"chatSessionsProvider",
	"defaultChatParticipant",
	"findFiles2",
	"inlineCompletionsAdditions",
	"languageModelPicker",
	"testingCoverage",
}

// Formatted renders a pretty-printed declaration module with the given names.
func Formatted(names ...string) string {
	var b strings.Builder
	b.WriteString("\"use strict\";\n")
	b.WriteString("Object.defineProperty(exports, \"__esModule\", { value: true });\n")
	b.WriteString("exports.allApiProposals = void 0;\n")
	b.WriteString("const allApiProposals = Object.freeze({\n")
	for i, n := range names {
		fmt.Fprintf(&b, "    %s: {\n        version: %d,\n        proposal: 'declare module vscode {}'\n    },\n", n, i%7+1)
	}
	b.WriteString("});\nexports.allApiProposals = allApiProposals;\n")
	return b.String()
}

// Minified renders the declaration table the way it appears concatenated into
// a workbench bundle, optionally with quoted keys and surrounding noise.
func Minified(quoted bool, names ...string) string {
	var b strings.Builder
	b.WriteString(`"use strict";var a=function(){return {version:"x"}};`)
	b.WriteString(`Object.defineProperty(exports,"__esModule",{value:true});const allApiProposals=Object.freeze({`)
	for i, n := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		key := n
		if quoted {
			key = `"` + n + `"`
		}
		fmt.Fprintf(&b, `%s:{version:%d,proposal:"..."}`, key, i%5+1)
	}
	b.WriteString(`});exports.allApiProposals=allApiProposals;function b(c){return c.version}`)
	return b.String()
}

// BundleNames returns CoreNames padded with synthetic names up to n entries.
func BundleNames(n int) []string {
	names := append([]string(nil), CoreNames...)
	for i := 1; len(names) < n; i++ {
		names = append(names, fmt.Sprintf("bundleProposal%d", i))
	}
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// Product renders a product configuration with an allow-list.
func Product(lists map[string][]string) string {
	var b strings.Builder
	b.WriteString(`{"nameShort":"VSCodium","extensionEnabledApiProposals":{`)
	first := true
	for ext, list := range lists {
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&b, "%q:[", ext)
		for i, p := range list {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%q", p)
		}
		b.WriteByte(']')
	}
	b.WriteString("}}")
	return b.String()
}
